package upload

// Folder groups uploads by their role in a generation.
type Folder string

const (
	FolderObject   Folder = "object"
	FolderMaterial Folder = "material"
)

// Valid reports whether f is a known folder.
func (f Folder) Valid() bool {
	return f == FolderObject || f == FolderMaterial
}

// Asset is a stored image.
type Asset struct {
	ID     string
	Key    string
	URL    string
	Width  int
	Height int
	Bytes  int
	Format string
}
