package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(target string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", target, nil)
	return c
}

func TestFromQuery(t *testing.T) {
	p, err := FromQuery(testContext("/projects"), 6)
	require.NoError(t, err)
	assert.Equal(t, Params{Page: 1, Size: 6}, p)
	assert.Equal(t, 0, p.Offset())

	p, err = FromQuery(testContext("/projects?page=3"), 6)
	require.NoError(t, err)
	assert.Equal(t, 12, p.Offset())

	p, err = FromQuery(testContext("/projects?page=last"), 6)
	require.NoError(t, err)
	assert.True(t, p.Last)

	_, err = FromQuery(testContext("/projects?page=0"), 6)
	assert.ErrorIs(t, err, ErrInvalidPage)
	_, err = FromQuery(testContext("/projects?page=x"), 6)
	assert.ErrorIs(t, err, ErrInvalidPage)
}

func TestBuild_Links(t *testing.T) {
	c := testContext("http://api.example/api/v1/projects?page=2&status=draft")
	page, err := Build(c, Params{Page: 2, Size: 6}, 13, []int{})
	require.NoError(t, err)

	assert.Equal(t, int64(13), page.Count)
	assert.Equal(t, 3, page.NumPages)
	require.NotNil(t, page.Next)
	require.NotNil(t, page.Previous)
	assert.Equal(t, "http://api.example/api/v1/projects?page=3&status=draft", *page.Next)
	assert.Equal(t, "http://api.example/api/v1/projects?status=draft", *page.Previous)
}

func TestBuild_EmptyAndOutOfRange(t *testing.T) {
	c := testContext("/projects")
	page, err := Build(c, Params{Page: 1, Size: 6}, 0, []int{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.NumPages)
	assert.Nil(t, page.Next)
	assert.Nil(t, page.Previous)

	_, err = Build(c, Params{Page: 2, Size: 6}, 6, []int{})
	assert.ErrorIs(t, err, ErrInvalidPage)
}

func TestFetch_LastPage(t *testing.T) {
	var asked []int
	list := func(p Params) ([]int, int64, error) {
		asked = append(asked, p.Page)
		return []int{p.Page}, 13, nil
	}

	items, p, total, err := Fetch(Params{Page: 1, Size: 6, Last: true}, list)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, asked)
	assert.Equal(t, []int{3}, items)
	assert.Equal(t, Params{Page: 3, Size: 6}, p)
	assert.Equal(t, int64(13), total)

	asked = nil
	_, p, _, err = Fetch(Params{Page: 2, Size: 6}, list)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, asked)
	assert.Equal(t, 2, p.Page)

	page, err := Build(testContext("/projects?page=last"), p, 13, items)
	require.NoError(t, err)
	require.NotNil(t, page.Next)
	assert.Contains(t, *page.Next, "page=3")
}

func TestResolve_EmptyLastIsFirst(t *testing.T) {
	assert.Equal(t, Params{Page: 1, Size: 6}, Params{Page: 1, Size: 6, Last: true}.Resolve(0))
}
