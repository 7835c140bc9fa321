package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"NewsImpact/internal/domain"
	"NewsImpact/internal/usecase"
)

// NewsAPI is the news side of the use-case layer.
type NewsAPI interface {
	Feed(ctx context.Context) (usecase.FeedReport, error)
	Filtered(ctx context.Context, symbols []string) (usecase.FilteredReport, error)
	PortfolioSummary(ctx context.Context, symbols []string) (usecase.PortfolioSummary, error)
	Search(ctx context.Context, query string, maxHits int) (usecase.SearchReport, error)
}

// AnalysisAPI is the analysis side of the use-case layer.
type AnalysisAPI interface {
	Single(ctx context.Context, headline, description string, symbols []string) (usecase.SingleReport, error)
	Portfolio(ctx context.Context, items []domain.Article, maxItems int) (usecase.PortfolioReport, error)
	QuickSentiment(ctx context.Context, headlines []string) (usecase.QuickReport, error)
	Stock(ctx context.Context, symbol string, items []domain.Article) (usecase.StockReport, error)
}

var (
	_ NewsAPI     = (*usecase.NewsService)(nil)
	_ AnalysisAPI = (*usecase.AnalysisService)(nil)
)

// Deps wires the use cases and edge policy into the router.
type Deps struct {
	News           NewsAPI
	Analysis       AnalysisAPI
	AllowedOrigins []string
	RateLimit      int
	RateWindow     time.Duration
	Clock          func() time.Time
	Logger         *slog.Logger
}

// Server holds the HTTP handlers.
type Server struct {
	news     NewsAPI
	analysis AnalysisAPI
	clock    func() time.Time
	logger   *slog.Logger
}

// NewRouter builds the gin engine serving the /api routes.
func NewRouter(deps Deps) *gin.Engine {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	s := &Server{
		news:     deps.News,
		analysis: deps.Analysis,
		clock:    deps.Clock,
		logger:   deps.Logger,
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(deps.Logger))
	if len(deps.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     deps.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", requestIDHeader},
			ExposeHeaders:    []string{requestIDHeader},
			AllowCredentials: true,
		}))
	}

	r.GET("/", s.index)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Route not found", Message: c.Request.URL.Path})
	})

	api := r.Group("/api", rateLimit(deps.RateLimit, deps.RateWindow))
	api.GET("/health", s.health)

	newsGroup := api.Group("/news")
	newsGroup.GET("/general", s.generalNews)
	newsGroup.POST("/filtered", s.filteredNews)
	newsGroup.POST("/portfolio-summary", s.portfolioSummary)
	newsGroup.GET("/search", s.searchNews)

	analyze := api.Group("/analyze")
	analyze.POST("/single", s.analyzeSingle)
	analyze.POST("/portfolio", s.analyzePortfolio)
	analyze.POST("/quick-sentiment", s.quickSentiment)
	analyze.POST("/stock", s.analyzeStock)

	return r
}

func (s *Server) index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "NewsImpact API",
		"status":  "running",
		"endpoints": gin.H{
			"health": "GET /api/health",
			"news": gin.H{
				"general":          "GET /api/news/general",
				"filtered":         "POST /api/news/filtered",
				"portfolioSummary": "POST /api/news/portfolio-summary",
				"search":           "GET /api/news/search",
			},
			"analyze": gin.H{
				"single":         "POST /api/analyze/single",
				"portfolio":      "POST /api/analyze/portfolio",
				"quickSentiment": "POST /api/analyze/quick-sentiment",
				"stock":          "POST /api/analyze/stock",
			},
		},
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"message":   "NewsImpact API is running",
		"timestamp": s.clock().UTC().Format(time.RFC3339),
	})
}

func (s *Server) generalNews(c *gin.Context) {
	report, err := s.news.Feed(c.Request.Context())
	if err != nil {
		s.fail(c, err, "Failed to fetch news", "Unable to retrieve news at this time. Please try again later.")
		return
	}
	respond(c, report, "Balanced news feed fetched successfully")
}

type portfolioRequest struct {
	Stocks []string `json:"stocks"`
}

func (s *Server) filteredNews(c *gin.Context) {
	var req portfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid portfolio", "Please provide an array of stock symbols in your portfolio")
		return
	}

	report, err := s.news.Filtered(c.Request.Context(), req.Stocks)
	if err != nil {
		s.fail(c, err, "Failed to filter news", "Unable to filter news at this time. Please try again later.")
		return
	}
	respond(c, report, "Portfolio news fetched successfully")
}

func (s *Server) portfolioSummary(c *gin.Context) {
	var req portfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid portfolio", "Please provide an array of stock symbols in your portfolio")
		return
	}

	summary, err := s.news.PortfolioSummary(c.Request.Context(), req.Stocks)
	if err != nil {
		s.fail(c, err, "Failed to build portfolio summary", "Unable to build portfolio summary at this time. Please try again later.")
		return
	}
	respond(c, summary, "Portfolio summary generated successfully")
}

func (s *Server) searchNews(c *gin.Context) {
	report, err := s.news.Search(c.Request.Context(), c.Query("query"), s.queryInt(c, "limit", 0))
	if err != nil {
		s.fail(c, err, "Failed to search news", "Unable to search news at this time. Please try again later.")
		return
	}
	respond(c, report, "Search completed successfully")
}

type singleRequest struct {
	Headline     string   `json:"headline"`
	Description  string   `json:"description"`
	StockSymbols []string `json:"stockSymbols"`
}

func (s *Server) analyzeSingle(c *gin.Context) {
	var req singleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input", "Please provide a news headline to analyze")
		return
	}

	report, err := s.analysis.Single(c.Request.Context(), req.Headline, req.Description, req.StockSymbols)
	if err != nil {
		s.fail(c, err, "Failed to analyze news", "Unable to analyze news at this time. Please try again later.")
		return
	}
	respond(c, report, "News analysis completed successfully")
}

// newsItem is the subset of an article needed for analysis.
type newsItem struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Link           string   `json:"link"`
	Source         string   `json:"source"`
	RelevantStocks []string `json:"relevantStocks"`
}

func toArticles(items []newsItem) []domain.Article {
	if items == nil {
		return nil
	}
	out := make([]domain.Article, len(items))
	for i, it := range items {
		out[i] = domain.Article{
			Title:          it.Title,
			Description:    it.Description,
			Link:           it.Link,
			Source:         it.Source,
			RelevantStocks: it.RelevantStocks,
		}
	}
	return out
}

type portfolioAnalysisRequest struct {
	NewsItems []newsItem `json:"newsItems"`
	MaxItems  int        `json:"maxItems"`
}

func (s *Server) analyzePortfolio(c *gin.Context) {
	var req portfolioAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input", "Please provide an array of news items to analyze")
		return
	}

	report, err := s.analysis.Portfolio(c.Request.Context(), toArticles(req.NewsItems), req.MaxItems)
	if err != nil {
		s.fail(c, err, "Failed to analyze portfolio news", "Unable to analyze portfolio news at this time. Please try again later.")
		return
	}
	respond(c, report, "Portfolio news analysis completed successfully")
}

type quickSentimentRequest struct {
	Headlines []string `json:"headlines"`
}

func (s *Server) quickSentiment(c *gin.Context) {
	var req quickSentimentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input", "Please provide an array of headlines to analyze")
		return
	}

	report, err := s.analysis.QuickSentiment(c.Request.Context(), req.Headlines)
	if err != nil {
		s.fail(c, err, "Failed to analyze sentiment", "Unable to analyze sentiment at this time. Please try again later.")
		return
	}
	respond(c, report, "Quick sentiment analysis completed")
}

type stockRequest struct {
	StockSymbol string     `json:"stockSymbol"`
	NewsItems   []newsItem `json:"newsItems"`
}

func (s *Server) analyzeStock(c *gin.Context) {
	var req stockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input", "Please provide a stock symbol and news items")
		return
	}

	report, err := s.analysis.Stock(c.Request.Context(), req.StockSymbol, toArticles(req.NewsItems))
	if err != nil {
		s.fail(c, err, "Failed to analyze stock news", "Unable to analyze stock news at this time. Please try again later.")
		return
	}
	if report.Summary == nil {
		respond(c, report, "No relevant news found for "+report.Symbol)
		return
	}
	respond(c, report, "Stock news analysis completed successfully")
}

func (s *Server) queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		requestLogger(c, s.logger).Warn("invalid query parameter, using default", "param", name, "value", raw)
		return fallback
	}
	return v
}
