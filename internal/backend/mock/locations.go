package mock

import (
	"context"
	"fmt"
	"strings"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/client/categorytree"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/domain"
	"go.uber.org/zap"
)

// --- Locations ---

func (b *Backend) ListRegions(ctx context.Context) ([]domain.Region, error) {
	if err := b.delay(ctx); err != nil {
		return nil, err
	}
	return append([]domain.Region(nil), b.regions...), nil
}

func (b *Backend) ListDistricts(ctx context.Context, regionID int64) ([]domain.District, error) {
	if err := b.delay(ctx); err != nil {
		return nil, err
	}
	out := []domain.District{}
	for _, d := range b.districts {
		if d.RegionID == regionID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (b *Backend) ListCities(ctx context.Context, districtID int64) ([]domain.City, error) {
	if err := b.delay(ctx); err != nil {
		return nil, err
	}
	out := []domain.City{}
	for _, c := range b.cities {
		if c.DistrictID == districtID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (b *Backend) ResolveCity(ctx context.Context, cityID int64) (*domain.CityLocation, error) {
	if err := b.delay(ctx); err != nil {
		return nil, err
	}
	loc, ok := b.resolveCity(cityID)
	if !ok {
		return nil, fmt.Errorf("city %d: %w", cityID, domain.ErrNotFound)
	}
	return &loc, nil
}

func (b *Backend) resolveCity(cityID int64) (domain.CityLocation, bool) {
	var loc domain.CityLocation
	found := false
	for _, c := range b.cities {
		if c.ID == cityID {
			loc.City, found = c, true
			break
		}
	}
	if !found {
		return loc, false
	}
	for _, d := range b.districts {
		if d.ID == loc.City.DistrictID {
			loc.District = d
			break
		}
	}
	for _, r := range b.regions {
		if r.ID == loc.District.RegionID {
			loc.Region = r
			break
		}
	}
	return loc, true
}

// cityScope expands the location part of the criteria into city ids. Nil
// means unconstrained; an empty slice matches nothing.
func (b *Backend) cityScope(c domain.SearchCriteria) []int64 {
	switch {
	case c.CityID > 0:
		if _, ok := b.resolveCity(c.CityID); !ok {
			return []int64{}
		}
		return []int64{c.CityID}
	case c.DistrictID > 0:
		ids := []int64{}
		for _, city := range b.cities {
			if city.DistrictID == c.DistrictID {
				ids = append(ids, city.ID)
			}
		}
		return ids
	case c.RegionID > 0:
		districts := map[int64]bool{}
		for _, d := range b.districts {
			if d.RegionID == c.RegionID {
				districts[d.ID] = true
			}
		}
		ids := []int64{}
		for _, city := range b.cities {
			if districts[city.DistrictID] {
				ids = append(ids, city.ID)
			}
		}
		return ids
	}
	return nil
}

// --- Categories ---

func maxCategoryID(tree []domain.CategoryNode) int64 {
	var maxID int64
	stack := make([]*domain.CategoryNode, 0, len(tree))
	for i := range tree {
		stack = append(stack, &tree[i])
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		maxID = max(maxID, n.ID)
		for i := range n.Children {
			stack = append(stack, &n.Children[i])
		}
	}
	return maxID
}

func cloneTree(tree []domain.CategoryNode) []domain.CategoryNode {
	if tree == nil {
		return nil
	}
	out := make([]domain.CategoryNode, len(tree))
	for i, n := range tree {
		out[i] = domain.CategoryNode{ID: n.ID, Name: n.Name, Children: cloneTree(n.Children)}
	}
	return out
}

// insertChild appends node under parentID, or at the root when parentID is 0.
func insertChild(tree *[]domain.CategoryNode, parentID int64, node domain.CategoryNode) bool {
	if parentID == 0 {
		*tree = append(*tree, node)
		return true
	}
	stack := make([]*[]domain.CategoryNode, 0, 1)
	stack = append(stack, tree)
	for len(stack) > 0 {
		level := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for i := range *level {
			n := &(*level)[i]
			if n.ID == parentID {
				n.Children = append(n.Children, node)
				return true
			}
			stack = append(stack, &n.Children)
		}
	}
	return false
}

func (b *Backend) ListCategoriesAsTree(ctx context.Context) ([]domain.CategoryNode, error) {
	if err := b.delay(ctx); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return cloneTree(b.categories), nil
}

// CreateCategories adds the categories in order, so an entry may refer to a
// parent created earlier in the same batch. The batch is all or nothing.
func (b *Backend) CreateCategories(ctx context.Context, payload []domain.NewCategory, token string) ([]domain.CategoryNode, error) {
	ctx, span := tracer.Start(ctx, "MockBackend.CreateCategories")
	defer span.End()

	if err := b.delay(ctx); err != nil {
		return nil, err
	}
	if _, err := b.authorize(token, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: no categories given", domain.ErrInvalidInput)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	tree := cloneTree(b.categories)
	nextID := b.nextCategoryID
	created := make([]domain.CategoryNode, 0, len(payload))
	for _, nc := range payload {
		name := strings.TrimSpace(nc.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: category name is required", domain.ErrInvalidInput)
		}
		if nc.ParentID != 0 && categorytree.ResolveName(tree, nc.ParentID) == "" {
			return nil, fmt.Errorf("%w: parent category %d does not exist", domain.ErrInvalidInput, nc.ParentID)
		}
		nextID++
		node := domain.CategoryNode{ID: nextID, Name: name}
		insertChild(&tree, nc.ParentID, node)
		created = append(created, node)
	}
	b.categories = tree
	b.nextCategoryID = nextID

	b.log.Info("Categories created", zap.Int("count", len(created)))
	return created, nil
}
