package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"leadgate/contexts/lead-capture/intake-service/domain/entities"
	domainerrors "leadgate/contexts/lead-capture/intake-service/domain/errors"
	"leadgate/contexts/lead-capture/intake-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates the leads table, including the unique email index that
// backstops the pipeline's duplicate guard.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&leadModel{})
}

func (r *Repository) SaveLead(ctx context.Context, lead entities.Lead) error {
	row := leadModelFromEntity(lead)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateLead
		}
		return err
	}
	return nil
}

func (r *Repository) FindLeadByEmail(ctx context.Context, email string) (entities.Lead, error) {
	var row leadModel
	err := r.db.WithContext(ctx).
		Where("email = ?", entities.NormalizeEmail(email)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Lead{}, domainerrors.ErrLeadNotFound
		}
		return entities.Lead{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListLeads(ctx context.Context, filter ports.LeadFilter) ([]entities.Lead, error) {
	tx := r.db.WithContext(ctx).Model(&leadModel{})
	if needle := strings.TrimSpace(filter.FullName); needle != "" {
		tx = tx.Where("full_name ILIKE ?", "%"+needle+"%")
	}
	if needle := strings.TrimSpace(filter.Email); needle != "" {
		tx = tx.Where("email ILIKE ?", "%"+needle+"%")
	}
	if needle := strings.TrimSpace(filter.Phone); needle != "" {
		tx = tx.Where("phone ILIKE ?", "%"+needle+"%")
	}
	if needle := strings.TrimSpace(filter.ClientIP); needle != "" {
		tx = tx.Where("client_ip = ?", needle)
	}
	if needle := strings.TrimSpace(filter.State); needle != "" {
		tx = tx.Where("state ILIKE ?", "%"+needle+"%")
	}
	if needle := strings.TrimSpace(filter.City); needle != "" {
		tx = tx.Where("city ILIKE ?", "%"+needle+"%")
	}
	if filter.Limit > 0 {
		tx = tx.Limit(filter.Limit)
	}

	var rows []leadModel
	if err := tx.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]entities.Lead, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

type leadModel struct {
	LeadID           string    `gorm:"column:lead_id;primaryKey"`
	FullName         string    `gorm:"column:full_name"`
	Email            string    `gorm:"column:email;uniqueIndex"`
	Phone            string    `gorm:"column:phone"`
	ContactMethod    string    `gorm:"column:contact_method"`
	Address          string    `gorm:"column:address"`
	City             string    `gorm:"column:city"`
	State            string    `gorm:"column:state"`
	ZipCode          string    `gorm:"column:zip_code"`
	AgeConfirmed     bool      `gorm:"column:age_confirmed"`
	ClientIP         string    `gorm:"column:client_ip"`
	UserAgent        string    `gorm:"column:user_agent"`
	Metadata         string    `gorm:"column:metadata"`
	FingerprintToken string    `gorm:"column:fingerprint_token"`
	CreatedAt        time.Time `gorm:"column:created_at"`
}

func (leadModel) TableName() string {
	return "leads"
}

func leadModelFromEntity(lead entities.Lead) leadModel {
	return leadModel{
		LeadID:           lead.LeadID,
		FullName:         lead.FullName,
		Email:            entities.NormalizeEmail(lead.Email),
		Phone:            lead.Phone,
		ContactMethod:    lead.ContactMethod,
		Address:          lead.Address,
		City:             lead.City,
		State:            lead.State,
		ZipCode:          lead.ZipCode,
		AgeConfirmed:     lead.AgeConfirmed,
		ClientIP:         lead.ClientIP,
		UserAgent:        lead.UserAgent,
		Metadata:         lead.Metadata,
		FingerprintToken: lead.FingerprintToken,
		CreatedAt:        lead.CreatedAt.UTC(),
	}
}

func (m leadModel) toEntity() entities.Lead {
	return entities.Lead{
		LeadID:           m.LeadID,
		FullName:         m.FullName,
		Email:            m.Email,
		Phone:            m.Phone,
		ContactMethod:    m.ContactMethod,
		Address:          m.Address,
		City:             m.City,
		State:            m.State,
		ZipCode:          m.ZipCode,
		AgeConfirmed:     m.AgeConfirmed,
		ClientIP:         m.ClientIP,
		UserAgent:        m.UserAgent,
		Metadata:         m.Metadata,
		FingerprintToken: m.FingerprintToken,
		CreatedAt:        m.CreatedAt,
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
