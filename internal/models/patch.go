package models

// Optional marks whether a field was supplied in a partial update.
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some returns a set Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// RecipePatch holds one optional slot per mutable recipe column.
type RecipePatch struct {
	Title        Optional[string]
	Description  Optional[string]
	Ingredients  Optional[StringList]
	Instructions Optional[StringList]
	PrepTime     Optional[int]
	CookTime     Optional[int]
	Servings     Optional[int]
	Difficulty   Optional[string]
	Category     Optional[string]
	Image        Optional[string]
	IsPublic     Optional[bool]
}

// Columns returns the column updates for the fields that were supplied.
func (p RecipePatch) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if p.Title.Set {
		cols["title"] = p.Title.Value
	}
	if p.Description.Set {
		cols["description"] = p.Description.Value
	}
	if p.Ingredients.Set {
		cols["ingredients"] = p.Ingredients.Value
	}
	if p.Instructions.Set {
		cols["instructions"] = p.Instructions.Value
	}
	if p.PrepTime.Set {
		cols["prep_time"] = p.PrepTime.Value
	}
	if p.CookTime.Set {
		cols["cook_time"] = p.CookTime.Value
	}
	if p.Servings.Set {
		cols["servings"] = p.Servings.Value
	}
	if p.Difficulty.Set {
		cols["difficulty"] = p.Difficulty.Value
	}
	if p.Category.Set {
		cols["category"] = p.Category.Value
	}
	if p.Image.Set {
		cols["image"] = p.Image.Value
	}
	if p.IsPublic.Set {
		cols["is_public"] = p.IsPublic.Value
	}
	return cols
}
