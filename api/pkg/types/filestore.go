package types

type FileStoreType string

const (
	FileStoreTypeLocalFS FileStoreType = "fs"
	FileStoreTypeGCS     FileStoreType = "gcs"
)
