package types

type DataResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type ReportRunResponse struct {
	FileName      string `json:"file_name"`
	PagesAnalyzed int    `json:"pages_analyzed"`
	FailedPages   []int  `json:"failed_pages,omitempty"`
	FinalReport   string `json:"final_report,omitempty"`
	FilesIndexed  int    `json:"files_indexed"`
}

type FinalReportResponse struct {
	FinalReport string `json:"final_report"`
}
