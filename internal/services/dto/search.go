package dto

type SearchQuery struct {
	Query string `form:"q" validate:"required,min=1,max=200"`
	Limit int    `form:"limit"`
}

type SearchResponse struct {
	Query    string            `json:"query"`
	Projects []ProjectResponse `json:"projects"`
	Tasks    []TaskResponse    `json:"tasks"`
}
