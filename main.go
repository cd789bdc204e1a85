package main

import (
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"pub-catalog/config"
	"pub-catalog/journals"
	"pub-catalog/models"
	"pub-catalog/providers/scopus"
	"pub-catalog/services"
	"pub-catalog/storage"
	"pub-catalog/store"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
)

const maxPDFSize = 10 << 20 // 10MB upload cap

var (
	publicationsCreated prometheus.Counter
	catalogSize         prometheus.Gauge
)

func init() {
	publicationsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "publications_created_total",
			Help: "Total number of publications added to the catalog.",
		},
	)
	catalogSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_publications",
			Help: "Current number of publications in the catalog.",
		},
	)
	prometheus.MustRegister(publicationsCreated, catalogSize)
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	// Reference data: loaded once, read-only afterwards. Absence or a
	// corrupt file disables quartile lookups but never stops the service.
	quartiles := journals.NewIndex(logging)
	if err := quartiles.Load(cfg.QuartilesFile); err != nil {
		logging.Warn("Continuing without journal quartile data", zap.Error(err))
	}

	// In-memory catalog with a handful of demo records.
	catalog := store.NewMemoryStore()
	seedDemoPublications(catalog, logging)
	catalogSize.Set(float64(catalog.Count()))

	// Optional S3 archive for uploaded PDF files.
	var s3Client *awss3.Client
	if cfg.S3Enabled() {
		s3Client, err = storage.NewS3Client(cfg)
		if err != nil {
			logging.Fatal("S3 client creation failed", zap.Error(err))
		}
		logging.Info("PDF archive storage enabled", zap.String("bucket", cfg.S3Bucket))
	} else {
		logging.Info("PDF archive storage not configured, uploads are not persisted")
	}

	scopusFetcher := scopus.NewFetcher(cfg, logging, quartiles)
	searchService := services.NewSearchService(catalog, scopusFetcher, logging)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.MaxMultipartMemory = maxPDFSize
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	setupPublicationRoutes(router, cfg, catalog, searchService, s3Client, logging)
	setupScopusRoutes(router, scopusFetcher, logging)
	setupJournalRoutes(router, quartiles)

	cronScheduler := cron.New()
	cronScheduler.AddFunc(cfg.StatsCronSchedule, func() {
		n := catalog.Count()
		catalogSize.Set(float64(n))
		logging.Info("Catalog stats", zap.Int("publications", n))
	})
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

// parseSearchParams reads list-query parameters. Numeric parameters that
// fail to parse are reported, not silently dropped.
func parseSearchParams(c *gin.Context) (models.SearchParams, error) {
	params := models.SearchParams{
		Query:         c.Query("query"),
		Author:        c.Query("author"),
		University:    c.Query("university"),
		Journal:       c.Query("journal"),
		Category:      c.Query("category"),
		SortBy:        c.Query("sortBy"),
		SortDirection: c.Query("sortDirection"),
		Database:      c.QueryArray("database"),
	}

	for _, f := range []struct {
		name string
		dst  *int
	}{
		{"yearFrom", &params.YearFrom},
		{"yearTo", &params.YearTo},
		{"page", &params.Page},
		{"limit", &params.Limit},
	} {
		raw := c.Query(f.name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return params, err
		}
		*f.dst = v
	}

	params.Normalize()
	return params, nil
}

func setupPublicationRoutes(router *gin.Engine, cfg *config.Config, catalog *store.MemoryStore, search *services.SearchService, s3Client *awss3.Client, log *zap.Logger) {
	rg := router.Group("/api/publications")

	// List with filters, sort and pagination. Requests naming the Scopus
	// provenance go remote with silent fallback to the local catalog.
	rg.GET("", func(c *gin.Context) {
		params, err := parseSearchParams(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid query parameters"})
			return
		}
		c.JSON(http.StatusOK, search.Search(c.Request.Context(), params))
	})

	rg.GET("/:id", func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid publication id"})
			return
		}
		pub := catalog.Get(id)
		if pub == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Publication not found"})
			return
		}
		c.JSON(http.StatusOK, pub)
	})

	rg.POST("", func(c *gin.Context) {
		var in models.PublicationInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid publication: " + err.Error()})
			return
		}
		pub := catalog.Create(in)
		publicationsCreated.Inc()
		catalogSize.Set(float64(catalog.Count()))
		c.JSON(http.StatusCreated, pub)
	})

	rg.PUT("/:id", func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid publication id"})
			return
		}
		var upd models.PublicationUpdate
		if err := c.ShouldBindJSON(&upd); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
			return
		}
		pub := catalog.Update(id, upd)
		if pub == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Publication not found"})
			return
		}
		c.JSON(http.StatusOK, pub)
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid publication id"})
			return
		}
		if !catalog.Delete(id) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Publication not found"})
			return
		}
		catalogSize.Set(float64(catalog.Count()))
		c.Status(http.StatusNoContent)
	})

	rg.POST("/batch", func(c *gin.Context) {
		var req struct {
			IDs []int `json:"ids" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ids format"})
			return
		}
		c.JSON(http.StatusOK, catalog.GetByIDs(req.IDs))
	})

	rg.GET("/:id/citation", func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid publication id"})
			return
		}
		pub := catalog.Get(id)
		if pub == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Publication not found"})
			return
		}
		style := services.CitationStyle(strings.ToUpper(c.DefaultQuery("style", "gost")))
		c.JSON(http.StatusOK, gin.H{
			"id":       pub.ID,
			"style":    style,
			"citation": services.FormatCitation(pub, style),
		})
	})

	// PDF intake: the file is size-capped and, when the archive bucket is
	// configured, stored to S3. Metadata extraction itself is a stub.
	rg.POST("/pdf", func(c *gin.Context) {
		file, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "No file was uploaded"})
			return
		}
		if file.Size > maxPDFSize {
			c.JSON(http.StatusBadRequest, gin.H{"message": "File exceeds the 10MB limit"})
			return
		}

		if s3Client != nil {
			src, err := file.Open()
			if err != nil {
				log.Error("Failed to open uploaded file", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to process PDF file"})
				return
			}
			defer src.Close()
			data, err := io.ReadAll(src)
			if err != nil {
				log.Error("Failed to read uploaded file", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to process PDF file"})
				return
			}
			key := "uploads/" + time.Now().UTC().Format("20060102T150405") + "-" + file.Filename
			link, err := storage.UploadFile(c.Request.Context(), s3Client, cfg, key, data)
			if err != nil {
				log.Error("S3 upload failed", zap.Error(err))
			} else {
				log.Info("Uploaded PDF archived", zap.String("s3_link", link))
			}
		}

		// Real text extraction is out of scope; return best-effort placeholders.
		c.JSON(http.StatusOK, gin.H{
			"title":   "Recognized publication title",
			"authors": "Ivanov I.I., Petrov P.P.",
			"journal": "Journal of Science and Technology",
			"year":    time.Now().Year(),
			"volume":  "10",
			"issue":   "2",
			"pages":   "123-145",
			"doi":     "10.1234/example.2023.5678",
		})
	})

	// Export is simulated: the response confirms format and record count,
	// no file is rendered.
	rg.POST("/export", func(c *gin.Context) {
		var req struct {
			IDs               []int  `json:"ids" binding:"required"`
			Format            string `json:"format" binding:"required,oneof=docx pdf bibtex txt"`
			IncludeAbstract   bool   `json:"includeAbstract"`
			IncludeDoi        bool   `json:"includeDoi"`
			IncludeCategories bool   `json:"includeCategories"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid export request: " + err.Error()})
			return
		}
		pubs := catalog.GetByIDs(req.IDs)
		if len(pubs) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"message": "Publications not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":           "Export completed successfully",
			"format":            req.Format,
			"count":             len(pubs),
			"includeAbstract":   req.IncludeAbstract,
			"includeDoi":        req.IncludeDoi,
			"includeCategories": req.IncludeCategories,
		})
	})
}

func setupScopusRoutes(router *gin.Engine, fetcher *scopus.Fetcher, log *zap.Logger) {
	rg := router.Group("/api/scopus")

	rg.GET("", func(c *gin.Context) {
		params, err := parseSearchParams(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid query parameters"})
			return
		}

		// An author constraint becomes part of the boolean query expression.
		if author := strings.TrimSpace(params.Author); author != "" {
			clause := "AUTHOR-NAME(" + author + ")"
			if params.Query != "" {
				params.Query = params.Query + " AND " + clause
			} else {
				params.Query = clause
			}
		}

		if params.Query == "" && params.YearFrom == 0 && params.YearTo == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "At least one search parameter is required"})
			return
		}

		pubs, total, err := fetcher.SearchPublications(c.Request.Context(), params)
		if err != nil {
			log.Error("Scopus search failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to search Scopus API"})
			return
		}
		if pubs == nil {
			pubs = []*models.Publication{}
		}
		c.JSON(http.StatusOK, gin.H{
			"data":   pubs,
			"total":  total,
			"source": "Scopus API",
		})
	})

	rg.GET("/authors", func(c *gin.Context) {
		query := c.Query("query")
		if strings.TrimSpace(query) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Search query must not be empty"})
			return
		}
		limit := 10
		if raw := c.Query("limit"); raw != "" {
			if v, err := strconv.Atoi(raw); err == nil {
				limit = v
			}
		}
		authors, err := fetcher.SearchAuthors(c.Request.Context(), query, limit)
		if err != nil {
			log.Error("Scopus author search failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to search Scopus authors"})
			return
		}
		if authors == nil {
			authors = []models.Author{}
		}
		c.JSON(http.StatusOK, gin.H{
			"data":  authors,
			"total": len(authors),
			"query": query,
		})
	})

	rg.GET("/citations/:id", func(c *gin.Context) {
		scopusID := strings.TrimSpace(c.Param("id"))
		if scopusID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Publication id must not be empty"})
			return
		}
		citations, err := fetcher.GetCitations(c.Request.Context(), scopusID)
		if err != nil {
			log.Error("Citation lookup failed", zap.String("scopus_id", scopusID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch citations from Scopus API"})
			return
		}
		if citations == nil {
			citations = []models.Citation{}
		}
		c.JSON(http.StatusOK, gin.H{
			"data":     citations,
			"total":    len(citations),
			"scopusId": scopusID,
		})
	})
}

func setupJournalRoutes(router *gin.Engine, quartiles *journals.Index) {
	rg := router.Group("/api/journals")

	rg.GET("/search", func(c *gin.Context) {
		query := c.Query("query")
		if len(strings.TrimSpace(query)) < 2 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Search query must contain at least 2 characters"})
			return
		}
		results := quartiles.Search(query, 10)
		if results == nil {
			results = []journals.Entry{}
		}
		c.JSON(http.StatusOK, gin.H{
			"data":  results,
			"total": len(results),
			"query": query,
		})
	})
}

// seedDemoPublications loads a handful of demo records so a fresh instance
// is browsable right away.
func seedDemoPublications(catalog *store.MemoryStore, log *zap.Logger) {
	demo := []models.PublicationInput{
		{
			Title:      "Влияние нанотехнологий на молекулярную структуру полимеров",
			Authors:    "Иванов И.И., Петров П.П., Сидоров С.С.",
			University: "Московский государственный университет",
			Journal:    "Вестник нанотехнологий",
			Year:       2022,
			Volume:     "5",
			Issue:      "2",
			Pages:      "34-45",
			DOI:        "10.1234/abcd.2022.1234",
			Category:   "Q1",
			Type:       "article",
			Database:   "Scopus",
			URL:        "https://example.com/article1",
			Abstract:   "В данной статье рассматривается влияние нанотехнологий на молекулярную структуру полимеров.",
		},
		{
			Title:      "Методы анализа больших данных в биоинформатике",
			Authors:    "Смирнов А.А., Иванов И.И.",
			University: "Санкт-Петербургский политехнический университет",
			Journal:    "Биоинформатика и геномика",
			Year:       2021,
			Volume:     "12",
			Issue:      "3",
			Pages:      "45-58",
			DOI:        "10.5678/efgh.2021.5678",
			Category:   "Q2",
			Type:       "article",
			Database:   "Scopus, ВАК",
			URL:        "https://example.com/article2",
			Abstract:   "Статья посвящена методам анализа больших данных в биоинформатике.",
		},
		{
			Title:      "Разработка метода автоматизированного анализа медицинских изображений",
			Authors:    "Петров П.П., Сидоров С.С.",
			University: "Новосибирский государственный университет",
			Journal:    "Медицинская информатика",
			Year:       2023,
			Volume:     "8",
			Issue:      "1",
			Pages:      "12-23",
			DOI:        "10.9012/ijkl.2023.9012",
			Category:   "Q3",
			Type:       "article",
			Database:   "eLIBRARY",
			URL:        "https://example.com/article3",
			Abstract:   "В работе представлен метод автоматизированного анализа медицинских изображений.",
		},
		{
			Title:        "Способ получения биоразлагаемых композитных материалов",
			Authors:      "Кузнецов А.В., Иванов И.И.",
			University:   "Казанский федеральный университет",
			Year:         2022,
			PatentNumber: "RU2712345",
			Category:     "Патент",
			Type:         "patent",
			URL:          "https://example.com/patent1",
			Abstract:     "Патент описывает способ получения биоразлагаемых композитных материалов.",
		},
	}

	for _, in := range demo {
		catalog.Create(in)
	}
	log.Info("Seeded demo publications", zap.Int("count", len(demo)))
}
