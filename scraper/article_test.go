package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articleURL = "https://www.blogdumoderateur.com/tech/article-test/"

// fullArticleHTML mirrors the structure of a real article page.
const fullArticleHTML = `<!doctype html>
<html lang="fr"><head>
<title>Page title</title>
<link rel="canonical" href="https://www.blogdumoderateur.com/web/article-test/">
</head><body>
<nav class="breadcrumb"><a href="/">Accueil</a><a href="/tech/">Tech</a><a href="/tech/ia/">IA</a></nav>
<main>
<article class="post type-post category-intelligence-artificielle tag-ia">
  <header>
    <span class="favtag">IA</span>
    <h1 class="entry-title">  OpenAI d&amp;#8217;annonce   un nouveau modèle </h1>
    <span class="posted-on"><time datetime="2024-05-14T10:00:00+02:00">14 mai 2024</time></span>
    <span class="byline">Par <a href="/auteur/thomas/" title="Thomas Coëffé">Thomas</a></span>
  </header>
  <img class="wp-post-image" src="https://cdn.example.com/thumb.jpg" alt="image">
  <div class="entry-content">
    <p>Le nouveau modèle présenté cette semaine change la donne pour les développeurs.</p>
    <p>Court.</p>
    <h2>Ce qu'il faut retenir</h2>
    <figure><img data-lazy-src="//cdn.example.com/body-1.png" src="data:image/gif;base64,R0lGOD" alt="Capture de l'interface"><figcaption>L'interface</figcaption></figure>
    <ul><li>Un premier point important</li><li>ok</li></ul>
    <blockquote>Une citation suffisamment longue pour être gardée.</blockquote>
    <img src="/relative/only.png">
    <img src="https://cdn.example.com/body-2.jpg" alt="photo">
  </div>
</article>
</main>
</body></html>`

// Test helper: parse an HTML string into a document
func parseDoc(t *testing.T, html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

// Test helper: extract an article with the default config
func extractArticle(t *testing.T, html string) *Article {
	article, err := NewArticleExtractor(nil).Extract(parseDoc(t, html), articleURL)
	require.NoError(t, err)
	require.NotNil(t, article)
	return article
}

// TestExtract_NilDocument verifies a nil document is an error
func TestExtract_NilDocument(t *testing.T) {
	article, err := NewArticleExtractor(nil).Extract(nil, articleURL)
	assert.ErrorIs(t, err, ErrNilDocument)
	assert.Nil(t, article)
}

// TestExtract_FullArticle verifies every field on a realistic page
func TestExtract_FullArticle(t *testing.T) {
	article := extractArticle(t, fullArticleHTML)

	assert.Equal(t, articleURL, article.URL)
	require.NotNil(t, article.Title)
	assert.Equal(t, "OpenAI d'annonce un nouveau modèle", *article.Title)

	require.NotNil(t, article.Thumbnail)
	assert.Equal(t, "https://cdn.example.com/thumb.jpg", *article.Thumbnail)

	require.NotNil(t, article.Category)
	assert.Equal(t, "Intelligence Artificielle", *article.Category)
	require.NotNil(t, article.Subcategory)
	assert.Equal(t, "Intelligence Artificielle", *article.Subcategory)

	require.NotNil(t, article.Summary)
	assert.Equal(t, "Le nouveau modèle présenté cette semaine change la donne pour les développeurs.", *article.Summary)

	require.NotNil(t, article.PublicationDate)
	assert.Equal(t, "20240514", *article.PublicationDate)

	require.NotNil(t, article.Author)
	assert.Equal(t, "Thomas Coëffé", *article.Author)

	assert.Equal(t,
		"Le nouveau modèle présenté cette semaine change la donne pour les développeurs.\n\n"+
			"Ce qu'il faut retenir\n\n"+
			"Un premier point important\n\n"+
			"Une citation suffisamment longue pour être gardée.",
		article.Content)

	require.Len(t, article.Images, 2)
	require.NotNil(t, article.Images[0].URL)
	assert.Equal(t, "https://cdn.example.com/body-1.png", *article.Images[0].URL)
	require.NotNil(t, article.Images[0].Caption)
	assert.Equal(t, "Capture de l'interface", *article.Images[0].Caption)
	require.NotNil(t, article.Images[1].URL)
	assert.Equal(t, "https://cdn.example.com/body-2.jpg", *article.Images[1].URL)
	// Generic alt is rejected; the figcaption inside the shared parent wins
	require.NotNil(t, article.Images[1].Caption)
	assert.Equal(t, "L'interface", *article.Images[1].Caption)
}

// TestExtract_Idempotent verifies extracting the same document twice gives
// identical records
func TestExtract_Idempotent(t *testing.T) {
	extractor := NewArticleExtractor(nil)
	doc := parseDoc(t, fullArticleHTML)

	first, err := extractor.Extract(doc, articleURL)
	require.NoError(t, err)
	second, err := extractor.Extract(doc, articleURL)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// TestExtract_EmptyDocument verifies every field degrades without error
func TestExtract_EmptyDocument(t *testing.T) {
	article := extractArticle(t, `<html><body><p>nothing here</p></body></html>`)

	assert.Nil(t, article.Title)
	assert.Nil(t, article.Thumbnail)
	assert.Nil(t, article.Category)
	assert.Nil(t, article.Subcategory)
	assert.Nil(t, article.Summary)
	assert.Nil(t, article.PublicationDate)
	assert.Nil(t, article.Author)
	assert.Equal(t, "", article.Content)
	assert.NotNil(t, article.Images, "images should be an empty list, not nil")
	assert.Empty(t, article.Images)
}

// TestTitle_FallsBackToFirstH1 verifies the generic heading fallback
func TestTitle_FallsBackToFirstH1(t *testing.T) {
	article := extractArticle(t, `<body><h1>Titre simple</h1><h1>Second</h1></body>`)

	require.NotNil(t, article.Title)
	assert.Equal(t, "Titre simple", *article.Title)
}

// TestThumbnail_SkipsLeadingImage verifies the second image is used when
// there is no tagged post image
func TestThumbnail_SkipsLeadingImage(t *testing.T) {
	article := extractArticle(t, `<article>
		<img src="https://x.com/logo.png"><img src="https://x.com/hero.jpg"><img src="https://x.com/other.jpg">
	</article>`)

	require.NotNil(t, article.Thumbnail)
	assert.Equal(t, "https://x.com/hero.jpg", *article.Thumbnail)
}

// TestThumbnail_SingleImage verifies a lone image is used
func TestThumbnail_SingleImage(t *testing.T) {
	article := extractArticle(t, `<article><img data-src="//x.com/only.jpg"></article>`)

	require.NotNil(t, article.Thumbnail)
	assert.Equal(t, "https://x.com/only.jpg", *article.Thumbnail)
}

// TestCategory_ClassBeatsBreadcrumb verifies the class token wins over a
// breadcrumb
func TestCategory_ClassBeatsBreadcrumb(t *testing.T) {
	article := extractArticle(t, `<body>
		<nav class="breadcrumb"><a href="/">Accueil</a><a href="/social/">Social</a><a href="/social/x/">X</a></nav>
		<article class="post category-reseaux-sociaux"></article>
	</body>`)

	require.NotNil(t, article.Category)
	assert.Equal(t, "Reseaux Sociaux", *article.Category)
	assert.Equal(t, "Reseaux Sociaux", *article.Subcategory)
}

// TestCategory_Canonical verifies the canonical URL segment mapping
func TestCategory_Canonical(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"https://www.blogdumoderateur.com/web/a/", "Web"},
		{"https://www.blogdumoderateur.com/marketing/a/", "Marketing"},
		{"https://www.blogdumoderateur.com/social/a/", "Social"},
		{"https://www.blogdumoderateur.com/tech/a/", "Tech"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			article := extractArticle(t, `<html><head><link rel="canonical" href="`+tt.href+`"></head><body></body></html>`)
			require.NotNil(t, article.Category)
			assert.Equal(t, tt.want, *article.Category)
			assert.Equal(t, tt.want, *article.Subcategory)
		})
	}
}

// TestCategory_Breadcrumb verifies the last two breadcrumb links map to
// category and subcategory
func TestCategory_Breadcrumb(t *testing.T) {
	article := extractArticle(t, `<nav class="breadcrumb">
		<a href="/">Accueil</a><a href="/tech/">Tech</a><a href="/tech/ia/"> Intelligence  artificielle </a>
	</nav>`)

	require.NotNil(t, article.Category)
	assert.Equal(t, "Tech", *article.Category)
	require.NotNil(t, article.Subcategory)
	assert.Equal(t, "Intelligence artificielle", *article.Subcategory)
}

// TestCategory_Tag verifies the tag fallback, favtag before rel link
func TestCategory_Tag(t *testing.T) {
	article := extractArticle(t, `<a rel="category tag" href="/c/">Emploi</a><span class="favtag">Formation</span>`)
	require.NotNil(t, article.Category)
	assert.Equal(t, "Formation", *article.Category)
	assert.Equal(t, "Formation", *article.Subcategory)

	article = extractArticle(t, `<a rel="category tag" href="/c/">Emploi</a>`)
	require.NotNil(t, article.Category)
	assert.Equal(t, "Emploi", *article.Category)
}

// TestSummary_ShortFirstParagraphFallsBack verifies the excerpt fallback
func TestSummary_ShortFirstParagraphFallsBack(t *testing.T) {
	article := extractArticle(t, `<body>
		<div class="entry-excerpt">Un résumé suffisamment long pour passer.</div>
		<div class="entry-content"><p>Trop court</p></div>
	</body>`)

	require.NotNil(t, article.Summary)
	assert.Equal(t, "Un résumé suffisamment long pour passer.", *article.Summary)
}

// TestSummary_LeadParagraph verifies the last fallback
func TestSummary_LeadParagraph(t *testing.T) {
	article := extractArticle(t, `<p class="lead">Chapô de l'article, assez long.</p>`)

	require.NotNil(t, article.Summary)
	assert.Equal(t, "Chapô de l'article, assez long.", *article.Summary)
}

// TestDate_TextWhenNoAttribute verifies the display text is used
func TestDate_TextWhenNoAttribute(t *testing.T) {
	article := extractArticle(t, `<span class="posted-on"><time>7 mars 2023</time></span>`)

	require.NotNil(t, article.PublicationDate)
	assert.Equal(t, "20230307", *article.PublicationDate)
}

// TestDate_FallbackSelectors verifies the selector list after posted-on
func TestDate_FallbackSelectors(t *testing.T) {
	article := extractArticle(t, `<div class="date">Publié le 12/01/2022</div>`)
	require.NotNil(t, article.PublicationDate)
	assert.Equal(t, "20220112", *article.PublicationDate)

	article = extractArticle(t, `<span class="entry-date">2021-11-30</span>`)
	require.NotNil(t, article.PublicationDate)
	assert.Equal(t, "20211130", *article.PublicationDate)
}

// TestDate_Unparseable verifies an unparseable date leaves the field nil
func TestDate_Unparseable(t *testing.T) {
	article := extractArticle(t, `<span class="posted-on"><time>hier</time></span>`)

	assert.Nil(t, article.PublicationDate)
}

// TestAuthor_PlaceholderRejected verifies "Par" is not taken as a name
func TestAuthor_PlaceholderRejected(t *testing.T) {
	article := extractArticle(t, `<span class="byline"><a href="/a/" title="Par">Par</a></span>
		<span class="author-name">Claire Martin</span>`)

	require.NotNil(t, article.Author)
	assert.Equal(t, "Claire Martin", *article.Author)
}

// TestAuthor_LinkTextWhenNoTitle verifies the link text is used
func TestAuthor_LinkTextWhenNoTitle(t *testing.T) {
	article := extractArticle(t, `<span class="byline"><a href="/a/"> Jean  Dupont </a></span>`)

	require.NotNil(t, article.Author)
	assert.Equal(t, "Jean Dupont", *article.Author)
}

// TestAuthor_RelAuthor verifies the rel=author fallback
func TestAuthor_RelAuthor(t *testing.T) {
	article := extractArticle(t, `<a rel="author" href="/a/">BY</a><p>x</p>`)
	assert.Nil(t, article.Author, "placeholder is rejected case-insensitively")

	article = extractArticle(t, `<a rel="author" href="/a/">Léa</a>`)
	require.NotNil(t, article.Author)
	assert.Equal(t, "Léa", *article.Author)
}

// TestContent_ShortBlocksExcluded verifies blocks of 10 characters or less
// are dropped and the rest are joined by one blank line
func TestContent_ShortBlocksExcluded(t *testing.T) {
	article := extractArticle(t, `<div class="post-content">
		<p>Premier paragraphe gardé.</p>
		<p>1234567890</p>
		<p>12345678901</p>
		<p>   </p>
		<h3>Un intertitre long</h3>
	</div>`)

	assert.Equal(t, "Premier paragraphe gardé.\n\n12345678901\n\nUn intertitre long", article.Content)
}

// TestContent_ContainerPriority verifies .entry-content beats .content
func TestContent_ContainerPriority(t *testing.T) {
	article := extractArticle(t, `<body>
		<div class="content"><p>Texte du conteneur générique.</p></div>
		<div class="entry-content"><p>Texte du conteneur principal.</p></div>
	</body>`)

	assert.Equal(t, "Texte du conteneur principal.", article.Content)
}

// TestContent_CustomSelectors verifies config overrides the container list
func TestContent_CustomSelectors(t *testing.T) {
	extractor := NewArticleExtractor(&Config{ContentSelectors: []string{"section.body"}})
	doc := parseDoc(t, `<div class="entry-content"><p>Ignoré car non configuré.</p></div>
		<section class="body"><p>Texte de la section configurée.</p></section>`)

	article, err := extractor.Extract(doc, articleURL)
	require.NoError(t, err)
	assert.Equal(t, "Texte de la section configurée.", article.Content)
}
