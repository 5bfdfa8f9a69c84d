package domain

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestPageRequest_Normalize(t *testing.T) {
	assert.Equal(t, PageRequest{Page: 1, PageSize: DefaultPageSize}, PageRequest{}.Normalize())
	assert.Equal(t, PageRequest{Page: 3, PageSize: MaxPageSize}, PageRequest{Page: 3, PageSize: 1000}.Normalize())
	assert.Equal(t, 40, PageRequest{Page: 3, PageSize: 20}.Offset())
}

func TestProperty_HasMoreMatchesRemainingRows(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("has_more is true exactly when rows remain after this page", prop.ForAll(
		func(total, page, size int) bool {
			req := PageRequest{Page: page, PageSize: size}.Normalize()
			n := total - req.Offset()
			if n < 0 {
				n = 0
			}
			if n > req.PageSize {
				n = req.PageSize
			}
			p := NewPage(make([]int, n), total, req)
			return p.HasMore == (req.Offset()+n < total)
		},
		gen.IntRange(0, 500),
		gen.IntRange(-2, 30),
		gen.IntRange(-5, 150),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestNewPage_NilItemsEncodeAsEmpty(t *testing.T) {
	p := NewPage[string](nil, 0, PageRequest{Page: 1, PageSize: 20})
	assert.NotNil(t, p.Items)
	assert.False(t, p.HasMore)
}
