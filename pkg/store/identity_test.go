package store

import "testing"

func TestSameRef(t *testing.T) {
	type point struct{ X, Y int }
	type withSlice struct{ Items []int }

	p := &point{1, 2}
	q := &point{1, 2}
	m := map[string]int{"a": 1}
	s := []int{1, 2, 3}
	ch := make(chan int)
	fn := func() {}
	var nilPtr *point
	empty := &struct{}{}

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"both nil", nil, nil, true},
		{"nil and value", nil, 1, false},
		{"same pointer", p, p, true},
		{"equal contents different pointers", p, q, false},
		{"typed nil pointers", nilPtr, (*point)(nil), true},
		{"typed nil vs untyped nil", nilPtr, nil, false},
		{"same map", m, m, true},
		{"different maps", m, map[string]int{"a": 1}, false},
		{"same slice", s, s, true},
		{"resliced", s, s[:2], false},
		{"copied slice", s, append([]int(nil), s...), false},
		{"same chan", ch, ch, true},
		{"func never same", fn, fn, false},
		{"equal ints", 1, 1, true},
		{"different ints", 1, 2, false},
		{"different types same value", 1, int64(1), false},
		{"equal strings", "x", "x", true},
		{"equal comparable structs", point{1, 2}, point{1, 2}, true},
		{"non-comparable structs", withSlice{s}, withSlice{s}, false},
		{"nil slices", []int(nil), []int(nil), true},
		{"empty struct pointers", &struct{}{}, &struct{}{}, false},
		{"same empty struct pointer", empty, empty, false},
		{"nil empty struct pointers", (*struct{})(nil), (*struct{})(nil), true},
		{"empty slices", make([]int, 0), make([]int, 0), false},
		{"zero-size element slices", make([]struct{}, 2), make([]struct{}, 2), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameRef(tt.a, tt.b); got != tt.want {
				t.Errorf("SameRef(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestZeroSizeValuesAlwaysNotify(t *testing.T) {
	c := New()
	renders := 0
	b := c.Bind(func() { renders++ })
	defer b.Close()

	c.Set("k", &struct{}{})
	c.Set("k", &struct{}{})
	c.Set("s", make([]int, 0))
	c.Set("s", make([]int, 0))

	if renders != 4 {
		t.Errorf("renders = %d, want 4", renders)
	}
}
