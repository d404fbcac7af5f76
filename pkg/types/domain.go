package types

// Checkpoint is an adapter checkpoint discovered on disk.
type Checkpoint struct {
	// Adapter identity derived from the file or directory name.
	// example: test_gen_adapter
	ID string `json:"id" example:"test_gen_adapter"`
	// Absolute path to the checkpoint.
	// example: /mnt/data/adapters/test_gen_adapter.gguf
	Path string `json:"path" example:"/mnt/data/adapters/test_gen_adapter.gguf"`
	// Approximate on-disk size in MB.
	// example: 64
	SizeMB int `json:"size_mb" example:"64"`
}

// BrandInfo describes a named strategy and its bound checkpoint, if any.
type BrandInfo struct {
	// example: documentation
	Name string `json:"name" example:"documentation"`
	// example: /mnt/data/adapters/docs.gguf
	Checkpoint string `json:"checkpoint,omitempty"`
}
