package usecase

import (
	"reflect"
	"testing"
)

func TestNewPage(t *testing.T) {
	tests := []struct {
		limit, offset int
		want          Page
	}{
		{limit: 0, offset: 0, want: Page{Limit: DefaultPageLimit}},
		{limit: -5, offset: -1, want: Page{Limit: DefaultPageLimit}},
		{limit: 10, offset: 20, want: Page{Limit: 10, Offset: 20}},
		{limit: 10000, offset: 0, want: Page{Limit: MaxPageLimit}},
	}
	for _, tt := range tests {
		if got := NewPage(tt.limit, tt.offset); got != tt.want {
			t.Errorf("NewPage(%d, %d) = %+v, want %+v", tt.limit, tt.offset, got, tt.want)
		}
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	tests := []struct {
		name string
		page Page
		want []int
	}{
		{name: "first page", page: Page{Limit: 2}, want: []int{1, 2}},
		{name: "middle", page: Page{Limit: 2, Offset: 2}, want: []int{3, 4}},
		{name: "short tail", page: Page{Limit: 2, Offset: 4}, want: []int{5}},
		{name: "past the end", page: Page{Limit: 2, Offset: 9}, want: []int{}},
		{name: "no limit", page: Page{Offset: 3}, want: []int{4, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Paginate(items, tt.page); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Paginate = %v, want %v", got, tt.want)
			}
		})
	}
}
