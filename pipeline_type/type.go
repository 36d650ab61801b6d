package pipeline_type

type ResultStatus string

const (
	ResultOK      ResultStatus = "ok"
	ResultFailed  ResultStatus = "failed"
	ResultSkipped ResultStatus = "skipped"
)

// SceneResult is the outcome of one stage for one scene index.
type SceneResult struct {
	Index  int          `json:"index"`
	Status ResultStatus `json:"status"`
	Path   string       `json:"path,omitempty"`
	Reason string       `json:"reason,omitempty"`
}

func OK(index int, path string) SceneResult {
	return SceneResult{Index: index, Status: ResultOK, Path: path}
}

func Failed(index int, reason string) SceneResult {
	return SceneResult{Index: index, Status: ResultFailed, Reason: reason}
}

func Skipped(index int, reason string) SceneResult {
	return SceneResult{Index: index, Status: ResultSkipped, Reason: reason}
}
