package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SubmitLeadRequest struct {
	FullName         string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	ContactMethod    string `json:"contact_method"`
	Address          string `json:"address"`
	City             string `json:"city"`
	State            string `json:"state"`
	ZipCode          string `json:"zip"`
	Age              string `json:"age"`
	Website          string `json:"website"` // honeypot, hidden on the real form
	CaptchaToken     string `json:"g-recaptcha-response"`
	Metadata         string `json:"metadata"`
	FingerprintToken string `json:"fingerprint"`
}

// SubmitLeadResponse is intentionally uniform: silent discards and duplicate
// suppressions answer with the same body as a real success.
type SubmitLeadResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type LeadDTO struct {
	LeadID        string `json:"lead_id"`
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	ContactMethod string `json:"contact_method"`
	Address       string `json:"address"`
	City          string `json:"city"`
	State         string `json:"state"`
	ZipCode       string `json:"zip_code"`
	AgeConfirmed  bool   `json:"age_confirmed"`
	ClientIP      string `json:"client_ip"`
	UserAgent     string `json:"user_agent,omitempty"`
	CreatedAt     string `json:"created_at"`
}

type ListLeadsResponse struct {
	Items []LeadDTO `json:"items"`
}
