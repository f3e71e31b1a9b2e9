package models

type UploadResponse struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
}

type CreateRoleRequest struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	DocumentID string `json:"document_id"`
}

type ScreeningRequest struct {
	RoleID      string   `json:"role_id"`
	DocumentIDs []string `json:"document_ids"`
}

type ScreeningResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type ScreeningResultResponse struct {
	ID            string            `json:"id"`
	Status        string            `json:"status"`
	RoleID        string            `json:"role_id"`
	DocumentCount int               `json:"document_count"`
	ScoredCount   int               `json:"scored_count"`
	Records       []ScreeningRecord `json:"records"`
}
