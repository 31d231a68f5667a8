// Package api serves the article store read-only over HTTP for the frontend.
package api

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/pevans/blogscraper/runlog"
	"github.com/pevans/blogscraper/store"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// ArticleStore is the read side of the article store.
type ArticleStore interface {
	Search(f store.Filter) ([]store.Record, error)
	Get(url string) (*store.Record, error)
	Categories() ([]string, error)
	Subcategories(category string) ([]string, error)
	Authors() ([]string, error)
	Stats() (*store.Stats, error)
}

// RunLister lists recorded scrape runs.
type RunLister interface {
	List(limit int) ([]runlog.Run, error)
}

// Server is the HTTP API over an ArticleStore.
type Server struct {
	articles ArticleStore
	runs     RunLister
}

// NewServer creates a server over articles. runs may be nil, in which case
// the run history route is not registered.
func NewServer(articles ArticleStore, runs RunLister) *Server {
	return &Server{
		articles: articles,
		runs:     runs,
	}
}

// SetupRouter configures the Gin router with every API route.
func (s *Server) SetupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	api := router.Group("/api/v1")
	api.GET("/articles", s.HandleListArticles)
	api.GET("/articles/lookup", s.HandleLookupArticle)
	api.GET("/categories", s.HandleCategories)
	api.GET("/subcategories", s.HandleSubcategories)
	api.GET("/authors", s.HandleAuthors)
	api.GET("/stats", s.HandleStats)
	if s.runs != nil {
		api.GET("/runs", s.HandleListRuns)
	}

	return router
}

// requestLogger logs each request through zerolog.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// errorResponse creates a standardized error response.
func errorResponse(code, message string) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}

// ListArticlesResponse is the body of GET /api/v1/articles.
type ListArticlesResponse struct {
	Articles []store.Record `json:"articles"`
	Total    int            `json:"total"`
	Limit    int            `json:"limit"`
	Offset   int            `json:"offset"`
}

// HandleListArticles handles GET /api/v1/articles.
func (s *Server) HandleListArticles(c *gin.Context) {
	filter := store.Filter{
		Category:    c.Query("category"),
		Subcategory: c.Query("subcategory"),
		Author:      c.Query("author"),
		Title:       c.Query("q"),
	}

	var ok bool
	if filter.DateStart, ok = dateParam(c, "date_start"); !ok {
		return
	}
	if filter.DateEnd, ok = dateParam(c, "date_end"); !ok {
		return
	}

	limit := defaultLimit
	if limitParam := c.Query("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, errorResponse("invalid_parameter", "Invalid limit parameter"))
			return
		}
		limit = min(parsed, maxLimit)
	}

	offset := 0
	if offsetParam := c.Query("offset"); offsetParam != "" {
		parsed, err := strconv.Atoi(offsetParam)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, errorResponse("invalid_parameter", "Invalid offset parameter"))
			return
		}
		offset = parsed
	}

	records, err := s.articles.Search(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("internal_error", "Failed to search articles: "+err.Error()))
		return
	}

	sortByDateDesc(records)

	c.JSON(http.StatusOK, ListArticlesResponse{
		Articles: paginate(records, offset, limit),
		Total:    len(records),
		Limit:    limit,
		Offset:   offset,
	})
}

// dateParam reads an optional YYYYMMDD query parameter, writing a 400 and
// returning false when it is malformed.
func dateParam(c *gin.Context, name string) (string, bool) {
	v := c.Query(name)
	if v == "" {
		return "", true
	}
	if _, err := time.Parse("20060102", v); err != nil || len(v) != 8 {
		c.JSON(http.StatusBadRequest, errorResponse("invalid_parameter", "Invalid "+name+" parameter: must be YYYYMMDD"))
		return "", false
	}
	return v, true
}

// sortByDateDesc orders records newest first; undated records go last and
// keep their store order.
func sortByDateDesc(records []store.Record) {
	slices.SortStableFunc(records, func(a, b store.Record) int {
		return strings.Compare(date(b), date(a))
	})
}

func date(r store.Record) string {
	if r.PublicationDate == nil {
		return ""
	}
	return *r.PublicationDate
}

// paginate returns a slice of records for the given offset and limit.
func paginate(records []store.Record, offset, limit int) []store.Record {
	if offset >= len(records) {
		return []store.Record{}
	}

	end := min(offset+limit, len(records))

	return records[offset:end]
}

// HandleLookupArticle handles GET /api/v1/articles/lookup?url=.
func (s *Server) HandleLookupArticle(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, errorResponse("invalid_parameter", "Missing url parameter"))
		return
	}

	record, err := s.articles.Get(url)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("internal_error", "Failed to get article: "+err.Error()))
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, errorResponse("not_found", "Article "+url+" not found"))
		return
	}

	c.JSON(http.StatusOK, record)
}

// HandleCategories handles GET /api/v1/categories.
func (s *Server) HandleCategories(c *gin.Context) {
	s.respondList(c, "categories", s.articles.Categories)
}

// HandleSubcategories handles GET /api/v1/subcategories?category=.
func (s *Server) HandleSubcategories(c *gin.Context) {
	category := c.Query("category")
	s.respondList(c, "subcategories", func() ([]string, error) {
		return s.articles.Subcategories(category)
	})
}

// HandleAuthors handles GET /api/v1/authors.
func (s *Server) HandleAuthors(c *gin.Context) {
	s.respondList(c, "authors", s.articles.Authors)
}

func (s *Server) respondList(c *gin.Context, key string, list func() ([]string, error)) {
	values, err := list()
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("internal_error", "Failed to list "+key+": "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{key: values})
}

// HandleStats handles GET /api/v1/stats.
func (s *Server) HandleStats(c *gin.Context) {
	stats, err := s.articles.Stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("internal_error", "Failed to compute stats: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, stats)
}

// HandleListRuns handles GET /api/v1/runs.
func (s *Server) HandleListRuns(c *gin.Context) {
	limit := 20
	if limitParam := c.Query("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, errorResponse("invalid_parameter", "Invalid limit parameter"))
			return
		}
		limit = min(parsed, maxLimit)
	}

	runs, err := s.runs.List(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("internal_error", "Failed to list runs: "+err.Error()))
		return
	}
	if runs == nil {
		runs = []runlog.Run{}
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs})
}
