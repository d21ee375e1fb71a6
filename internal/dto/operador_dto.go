package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CredenciaisOperador is embedded in every till request that acts on behalf
// of an operator. The secret is checked on each call.
type CredenciaisOperador struct {
	OperadorID    string `json:"operador_id"    validate:"required,max=40"`
	OperadorSenha string `json:"operador_senha" validate:"required"`
}

type CriarOperadorRequest struct {
	Nome    string   `json:"nome"    validate:"required,min=2,max=120"`
	Codigo  string   `json:"codigo"  validate:"required,max=40"`
	Segredo string   `json:"segredo" validate:"required,min=4,max=72"`
	UserID  *string  `json:"user_id" validate:"omitempty,uuid"`
	Papeis  []string `json:"papeis"  validate:"omitempty,dive,oneof=operador gerente admin"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type OperadorResponse struct {
	ID     string   `json:"id"`
	Codigo string   `json:"codigo"`
	Nome   string   `json:"nome"`
	Ativo  bool     `json:"ativo"`
	Papeis []string `json:"papeis"`
}

type OperadorResumo struct {
	ID     string `json:"id"`
	Codigo string `json:"codigo"`
	Nome   string `json:"nome"`
}
