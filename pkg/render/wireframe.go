package render

// wireEdge is an undirected mesh edge, stored in the winding of the first
// face that uses it, with every face that shares it.
type wireEdge struct {
	a, b  int
	faces []int
}

// buildEdges lists each distinct edge of mesh once.
func buildEdges(mesh MeshSource) []wireEdge {
	type key struct{ lo, hi int }

	index := make(map[key]int)
	var edges []wireEdge
	for i := range mesh.TriangleCount() {
		f := mesh.GetFace(i)
		for e := range 3 {
			a, b := f[e], f[(e+1)%3]
			if a == b {
				continue
			}
			k := key{min(a, b), max(a, b)}
			if j, ok := index[k]; ok {
				edges[j].faces = append(edges[j].faces, i)
				continue
			}
			index[k] = len(edges)
			edges = append(edges, wireEdge{a: a, b: b, faces: []int{i}})
		}
	}
	return edges
}

// drawWireframe outlines the faces that were filled this frame, drawing a
// shared edge once. Lines go on top without depth testing.
func (r *Renderer) drawWireframe() {
	if r.edges == nil {
		r.edges = buildEdges(r.mesh)
	}
	for _, e := range r.edges {
		if !r.anyDrawn(e.faces) {
			continue
		}
		a, b := r.screen[e.a], r.screen[e.b]
		r.fb.DrawLine(int(a.X), int(a.Y), int(b.X), int(b.Y), r.opts.WireColor)
	}
}

func (r *Renderer) anyDrawn(faces []int) bool {
	for _, f := range faces {
		if r.drawn[f] {
			return true
		}
	}
	return false
}
