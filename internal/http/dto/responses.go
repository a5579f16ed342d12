package dto

import "github.com/solmate-app/backend/internal/models"

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

type MeResponse struct {
	Authed bool   `json:"authed"`
	Wallet string `json:"wallet,omitempty"`
	Exp    int64  `json:"exp,omitempty"`
}

type BalanceResponse struct {
	Wallet  string  `json:"wallet"`
	Balance float64 `json:"balance"`
	Tier    string  `json:"tier"`
}

type EntitlementsResponse struct {
	Wallet string               `json:"wallet"`
	Items  []models.Entitlement `json:"items"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}
