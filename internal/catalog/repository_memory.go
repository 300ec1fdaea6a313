package catalog

var _ Repository = (*MemRepository)(nil)

type MemRepository struct {
	index
}

func NewMemRepository(products ...Product) *MemRepository {
	return &MemRepository{index: newIndex(products...)}
}
