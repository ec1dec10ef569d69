package entity

type Resource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Audit
}

func NewResource(name string) *Resource {
	return &Resource{Name: name}
}

func (r *Resource) GetID() string {
	return r.ID
}

func (r *Resource) SetID(id string) {
	r.ID = id
}

func (r *Resource) GetName() string {
	return r.Name
}

// Clone returns a deep copy, including the optional audit pointers.
func (r *Resource) Clone() *Resource {
	if r == nil {
		return nil
	}
	c := *r
	if r.UpdatedBy != nil {
		v := *r.UpdatedBy
		c.UpdatedBy = &v
	}
	if r.DeletedBy != nil {
		v := *r.DeletedBy
		c.DeletedBy = &v
	}
	if r.DeletedAt != nil {
		v := *r.DeletedAt
		c.DeletedAt = &v
	}
	return &c
}

// ResourcePatch carries the mutable fields of a Resource. Nil fields are preserved.
type ResourcePatch struct {
	Name *string
}

func (p ResourcePatch) ApplyTo(r *Resource) {
	if p.Name != nil {
		r.Name = *p.Name
	}
}

// IsEmpty reports whether the patch would change nothing.
func (p ResourcePatch) IsEmpty() bool {
	return p.Name == nil
}

var (
	_ Record           = (*Resource)(nil)
	_ Patch[*Resource] = ResourcePatch{}
)
