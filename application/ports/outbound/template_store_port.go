package outbound

import "github.com/zullum/comfyui-wan/domain"

// TemplateStorePort serves parsed workflow templates by name. Returned
// documents are independent clones; the cached baselines stay untouched.
type TemplateStorePort interface {
	Get(name string) (*domain.GraphDocument, error)
	List() []string
}
