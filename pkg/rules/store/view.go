package store

// View is an immutable document set captured at one instant. Every lookup
// through a View sees the same content version, however often the store
// is reloaded meanwhile.
type View struct {
	docs    map[string]*Document
	version string
}

// NewView captures docs. The map is copied.
func NewView(docs map[string]*Document) *View {
	copied := make(map[string]*Document, len(docs))
	for name, doc := range docs {
		copied[name] = doc
	}
	return &View{docs: copied, version: contentVersion(copied)}
}

// Resolve returns the named document.
func (v *View) Resolve(name string) (*Document, bool) {
	doc, ok := v.docs[name]
	return doc, ok
}

// Version returns the content version the view was captured at.
func (v *View) Version() string {
	return v.version
}

// Len returns the number of documents in the view.
func (v *View) Len() int {
	return len(v.docs)
}
