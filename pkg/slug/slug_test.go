package slug_test

import (
	"testing"

	"github.com/dmitrymomot/twofa/pkg/slug"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple", in: "Hello World", want: "hello-world"},
		{name: "punctuation", in: "Hello, World!", want: "hello-world"},
		{name: "diacritics", in: "Café Déjà Vu", want: "cafe-deja-vu"},
		{name: "consecutive separators collapse", in: "a  --  b", want: "a-b"},
		{name: "leading and trailing noise", in: "  ...Acme Corp...  ", want: "acme-corp"},
		{name: "digits preserved", in: "Area 51", want: "area-51"},
		{name: "empty", in: "", want: ""},
		{name: "only symbols", in: "!!!", want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, slug.Make(tt.in))
		})
	}
}
