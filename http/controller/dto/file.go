package dto

// FileSearchQuery is the query-string form of the list filter.
type FileSearchQuery struct {
	All        bool   `form:"all"`
	Extensions string `form:"ext"`
	Negate     bool   `form:"negate"`
}

// ThumbnailQuery selects one derivation target.
type ThumbnailQuery struct {
	Width  int `form:"w"`
	Height int `form:"h"`
	Align  int `form:"align"`
}

type UploadFileResponse struct {
	FileID string `json:"file_id"`
}

type UploadTemporaryFileResponse struct {
	StagedID  string `json:"staged_id"`
	SessionID string `json:"session_id"`
}

type AcceptStagingResponse struct {
	SessionID  string   `json:"session_id"`
	MovedFiles []string `json:"moved_files"`
	MovedCount int      `json:"moved_count"`
}

type ThumbnailTokenResponse struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}
