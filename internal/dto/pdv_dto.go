package dto

type CriarPDVRequest struct {
	Nome string `json:"nome" validate:"required,min=1,max=80"`
}

// TrocarOperadorRequest carries the credentials of the incoming operator.
type TrocarOperadorRequest struct {
	CredenciaisOperador
	PDVID string `json:"pdv_id" validate:"required,uuid"`
}

type PDVResponse struct {
	ID       string          `json:"id"`
	Nome     string          `json:"nome"`
	Status   string          `json:"status"` // ABERTO | FECHADO
	Operador *OperadorResumo `json:"operador"`
}
