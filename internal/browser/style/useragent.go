// internal/browser/style/useragent.go
package style

// DefaultUserAgentCSS is the built-in user-agent stylesheet. It only uses
// selectors the cascade can match (type, class, id and compounds of them).
const DefaultUserAgentCSS = `
html, body, div, p, h1, h2, h3, h4, h5, h6, ul, ol, form, header, footer,
section, article, nav, main, aside, blockquote, figure, pre {
    display: block;
}

body {
    margin: 8px;
}

h1 { font-size: 2em; margin: 0.67em 0; font-weight: bold; }
h2 { font-size: 1.5em; margin: 0.83em 0; font-weight: bold; }
h3 { font-size: 1.17em; margin: 1em 0; font-weight: bold; }
p { margin: 1em 0; }
blockquote { margin: 1em 40px; }

ul, ol { padding-left: 40px; margin: 1em 0; }
li { display: list-item; }

table { display: table; border-collapse: separate; }
tr { display: table-row; }
td, th { display: table-cell; padding: 1px; }
th { font-weight: bold; }

input, button, textarea, select {
    display: inline-block;
    box-sizing: border-box;
    margin: 2px 0;
    padding: 1px 2px;
    border-width: 2px;
}

input { width: 170px; }

button {
    padding: 1px 6px;
    text-align: center;
    cursor: default;
}

a {
    color: #0000EE;
    text-decoration: underline;
    cursor: pointer;
}

b, strong { font-weight: bold; }
small { font-size: smaller; }
`
