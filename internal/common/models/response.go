package models

// Response is the envelope returned by every operation.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ChartResponse extends the envelope for chart generation.
type ChartResponse struct {
	Success     bool   `json:"success"`
	ChartFile   string `json:"chart_file,omitempty"`
	ChartPath   string `json:"chart_path,omitempty"`
	ChartType   string `json:"chart_type,omitempty"`
	Title       string `json:"title,omitempty"`
	DataPoints  int    `json:"data_points"`
	DataSummary any    `json:"data_summary,omitempty"`
	Error       string `json:"error,omitempty"`
}

func Ok(data any) Response {
	return Response{Success: true, Data: data}
}

func OkWithCount(data any, count int) Response {
	return Response{Success: true, Data: data, Count: &count}
}

func Fail(err error) Response {
	return Response{Success: false, Error: err.Error()}
}
