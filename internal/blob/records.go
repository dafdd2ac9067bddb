package blob

// Group is a highlight group recovered from a make-it-pop style extension.
type Group struct {
	ID             string `json:"id,omitempty"`
	Name           string `json:"name,omitempty"`
	LightBgColor   string `json:"lightBgColor,omitempty"`
	LightTextColor string `json:"lightTextColor,omitempty"`
	DarkBgColor    string `json:"darkBgColor,omitempty"`
	DarkTextColor  string `json:"darkTextColor,omitempty"`
	Phrases        string `json:"phrases,omitempty"`
}

// Domain binds a URL pattern to a display mode and a set of groups.
type Domain struct {
	ID       string `json:"id,omitempty"`
	Pattern  string `json:"pattern,omitempty"`
	Mode     string `json:"mode,omitempty"`
	GroupIDs string `json:"groupIds,omitempty"`
}

// Group converts a record classified as SchemaGroup.
func (r Record) Group() (Group, bool) {
	if r.Schema != SchemaGroup {
		return Group{}, false
	}
	f := r.Fields
	return Group{
		ID:             f["id"],
		Name:           f["name"],
		LightBgColor:   f["lightBgColor"],
		LightTextColor: f["lightTextColor"],
		DarkBgColor:    f["darkBgColor"],
		DarkTextColor:  f["darkTextColor"],
		Phrases:        f["phrases"],
	}, true
}

// Domain converts a record classified as SchemaDomain.
func (r Record) Domain() (Domain, bool) {
	if r.Schema != SchemaDomain {
		return Domain{}, false
	}
	f := r.Fields
	return Domain{
		ID:       f["id"],
		Pattern:  f["pattern"],
		Mode:     f["mode"],
		GroupIDs: f["groupIds"],
	}, true
}
