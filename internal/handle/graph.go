package handle

// IDByName returns the id of the first handle registered under name.
func (r *Registry) IDByName(name string) (ID, bool) {
	for _, id := range r.order {
		if r.handles[id].Name == name {
			return id, true
		}
	}
	return None, false
}

// IsAncestor reports whether ancestor is candidate itself or is reachable
// from candidate through parent links.
func (r *Registry) IsAncestor(candidate, ancestor ID) bool {
	if candidate == ancestor {
		return true
	}
	visited := make(map[ID]bool)
	stack := []ID{candidate}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			continue
		}
		visited[id] = true

		h, ok := r.handles[id]
		if !ok {
			continue
		}
		for _, p := range h.Parents {
			if p == ancestor {
				return true
			}
			stack = append(stack, p)
		}
	}
	return false
}

// Descendants returns every registered id for which IsAncestor(id, ancestor)
// holds, ancestor included when registered, in registration order.
func (r *Registry) Descendants(ancestor ID) []ID {
	var out []ID
	for _, id := range r.order {
		if r.IsAncestor(id, ancestor) {
			out = append(out, id)
		}
	}
	return out
}

// Related resolves name and returns the handle and all of its subtypes.
// It returns nil when no handle carries the name.
func (r *Registry) Related(name string) []ID {
	id, ok := r.IDByName(name)
	if !ok {
		return nil
	}
	return r.Descendants(id)
}
