// Package http holds the wire DTOs for the chat endpoints.
package http

type ChatRequest struct {
	Message string `json:"message"`
}

type MessageDTO struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type ChatResponse struct {
	Response string       `json:"response"`
	History  []MessageDTO `json:"history"`
}
