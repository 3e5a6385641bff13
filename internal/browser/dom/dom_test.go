package dom_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/stylebox/internal/browser/dom"
)

const testHTML = `
	<html>
	<body>
		<div id="header">
			<h1>Welcome</h1>
		</div>
		<div class="content">
			<p>P1</p><p>P2</p>
			<ul>
				<li>Item 1</li>
				<li>Item 2</li>
				<li id="special">Item 3</li>
			</ul>
		</div>
		<div class="content"><p>P3</p></div>
	</body>
	</html>
	`

func TestFromHTML_AssignsSequentialIDs(t *testing.T) {
	doc, err := dom.FromHTML(strings.NewReader(testHTML))
	require.NoError(t, err)
	require.NotNil(t, doc.Root)

	assert.Equal(t, "html", doc.Root.Tag())
	assert.Equal(t, dom.NodeID(1), doc.Root.ID())

	var ids []dom.NodeID
	dom.Walk(doc.Root, func(n dom.Node, _ int) bool {
		ids = append(ids, n.ID())
		return true
	})
	for i, id := range ids {
		assert.Equal(t, dom.NodeID(i+1), id, "ids follow document order")
	}
}

func TestFromHTML_Attributes(t *testing.T) {
	doc, err := dom.FromHTML(strings.NewReader(`<div id=" main " class="a  b"><span>hello
		world</span></div>`))
	require.NoError(t, err)

	ids, err := doc.QueryIDs("//div")
	require.NoError(t, err)
	require.Len(t, ids, 1)

	div := dom.Find(doc.Root, ids[0])
	require.NotNil(t, div)
	id, ok := div.ElementID()
	assert.True(t, ok)
	assert.Equal(t, "main", id)
	assert.Equal(t, []string{"a", "b"}, div.Classes())

	span := div.Children()[0]
	assert.Equal(t, "hello world", span.Text())
}

func TestFromHTML_CollectsStyleBlocks(t *testing.T) {
	doc, err := dom.FromHTML(strings.NewReader(`<html><head><style>div { width: 10px }</style></head>
		<body><style>p { color: red }</style></body></html>`))
	require.NoError(t, err)
	require.Len(t, doc.StyleText, 2)
	assert.Contains(t, doc.Stylesheet(), "width: 10px")
	assert.Contains(t, doc.Stylesheet(), "color: red")
}

func TestDocument_QueryAndXPath(t *testing.T) {
	doc, err := dom.FromHTML(strings.NewReader(testHTML))
	require.NoError(t, err)

	ids, err := doc.QueryIDs("//li")
	require.NoError(t, err)
	require.Len(t, ids, 3)
	assert.Equal(t, `//*[@id='special']`, doc.XPath(ids[2]))
	assert.Equal(t, "", doc.XPath(9999))

	_, err = doc.QueryIDs("//[")
	assert.Error(t, err)
}

func TestWalk_SkipSubtree(t *testing.T) {
	root := dom.NewElement(1, "DIV").Append(
		dom.NewElement(2, "section").Append(dom.NewElement(3, "p")),
		dom.NewElement(4, "span"),
	)
	assert.Equal(t, "div", root.Tag())

	var seen []dom.NodeID
	dom.Walk(root, func(n dom.Node, depth int) bool {
		seen = append(seen, n.ID())
		return n.Tag() != "section"
	})
	assert.Equal(t, []dom.NodeID{1, 2, 4}, seen)
	assert.NotNil(t, dom.Find(root, 3), "Find is independent of the skipped walk")
	assert.Nil(t, dom.Find(root, 99))
}

func TestWalk_DeepTreeDoesNotRecurse(t *testing.T) {
	root := dom.NewElement(1, "div")
	cur := root
	for i := 2; i <= 20000; i++ {
		child := dom.NewElement(dom.NodeID(i), "div")
		cur.Append(child)
		cur = child
	}
	maxDepth := 0
	dom.Walk(root, func(_ dom.Node, depth int) bool {
		if depth > maxDepth {
			maxDepth = depth
		}
		return true
	})
	assert.Equal(t, 19999, maxDepth)
}
