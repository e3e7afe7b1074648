package model

// UploadStatus is the lifecycle state of one file inside a batch.
type UploadStatus string

const (
	UploadStatusUploading UploadStatus = "uploading"
	UploadStatusComplete  UploadStatus = "complete"
	UploadStatusError     UploadStatus = "error"
)

// UploadQueueItem is the ephemeral, caller-facing progress record for one
// file of a batch. Progress is 0-100 and never decreases while uploading.
type UploadQueueItem struct {
	FileName string       `json:"file_name"`
	Progress int          `json:"progress"`
	Status   UploadStatus `json:"status"`
	AssetID  string       `json:"asset_id,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// ProgressEvent is emitted by the scheduler on every queue item transition.
type ProgressEvent struct {
	Index    int          `json:"index"`
	FileName string       `json:"file_name"`
	Progress int          `json:"progress"`
	Status   UploadStatus `json:"status"`
}
