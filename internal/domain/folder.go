package domain

// Folder is a user-scoped bucket memos are filed into.
type Folder struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	UserID string `json:"user_id,omitempty"`
}

// FolderIndex maps folder names to ids and back for one folder set.
// Build a new index whenever the set changes.
type FolderIndex struct {
	idByName map[string]string
	nameByID map[string]string
	fallback string
}

// NewFolderIndex indexes folders. When two folders share a name the first wins.
func NewFolderIndex(folders []Folder, fallback string) *FolderIndex {
	if fallback == "" {
		fallback = DefaultFallbackFolder
	}
	idx := &FolderIndex{
		idByName: make(map[string]string, len(folders)),
		nameByID: make(map[string]string, len(folders)),
		fallback: fallback,
	}
	for _, f := range folders {
		if _, dup := idx.idByName[f.Name]; !dup {
			idx.idByName[f.Name] = f.ID
		}
		idx.nameByID[f.ID] = f.Name
	}
	return idx
}

// Fallback returns the fallback folder name.
func (i *FolderIndex) Fallback() string {
	if i == nil || i.fallback == "" {
		return DefaultFallbackFolder
	}
	return i.fallback
}

// NameOf returns the folder name for an id.
func (i *FolderIndex) NameOf(id string) (string, bool) {
	if i == nil {
		return "", false
	}
	name, ok := i.nameByID[id]
	return name, ok
}

// Resolve maps a folder name to an id by exact match, falling back to the
// fallback folder's id. ok is false when neither exists.
func (i *FolderIndex) Resolve(name string) (id string, ok bool) {
	if i == nil {
		return "", false
	}
	if id, ok := i.idByName[name]; ok {
		return id, true
	}
	id, ok = i.idByName[i.Fallback()]
	return id, ok
}

// Len returns the number of indexed folders.
func (i *FolderIndex) Len() int {
	if i == nil {
		return 0
	}
	return len(i.nameByID)
}
