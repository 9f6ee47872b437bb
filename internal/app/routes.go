package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"postboard/internal/auth"
	"postboard/internal/cache"
	"postboard/internal/config"
	"postboard/internal/graph"
	"postboard/internal/repo"
	"postboard/internal/service"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, db *pgxpool.Pool, postCache cache.PostCache, log *zap.Logger) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))

	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL.Duration(), nil)
	userRepo := repo.NewPGUserRepo(db)
	postRepo := repo.NewPGPostRepo(db)
	userSvc := service.NewUserService(userRepo, issuer, log)
	postSvc := service.NewPostService(postRepo, postCache, log)
	schema := graph.NewSchema(graph.NewResolver(userSvc, postSvc))

	gql := r.Group("/graphql", auth.BearerMiddleware(issuer))
	gql.GET("", playgroundHandler())
	gql.POST("", graphqlHandler(schema))
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "Postboard API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"graphql": "/graphql",
			"health":  "/health",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}

func graphqlHandler(schema *graphql.Schema) gin.HandlerFunc {
	return func(c *gin.Context) {
		var params struct {
			Query         string                 `json:"query"`
			OperationName string                 `json:"operationName"`
			Variables     map[string]interface{} `json:"variables"`
		}
		if err := c.ShouldBindJSON(&params); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"errors": []gin.H{{"message": "invalid request body"}},
			})
			return
		}
		resp := schema.Exec(c.Request.Context(), params.Query, params.OperationName, params.Variables)
		c.JSON(http.StatusOK, resp)
	}
}

func playgroundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(playgroundPage))
	}
}

const playgroundPage = `<!DOCTYPE html>
<html>
<head>
	<title>Postboard GraphiQL</title>
	<link rel="stylesheet" href="https://unpkg.com/graphiql/graphiql.min.css" />
</head>
<body style="margin: 0;">
	<div id="graphiql" style="height: 100vh;"></div>
	<script src="https://unpkg.com/react/umd/react.production.min.js"></script>
	<script src="https://unpkg.com/react-dom/umd/react-dom.production.min.js"></script>
	<script src="https://unpkg.com/graphiql/graphiql.min.js"></script>
	<script>
		ReactDOM.render(
			React.createElement(GraphiQL, {
				fetcher: GraphiQL.createFetcher({ url: '/graphql' }),
			}),
			document.getElementById('graphiql')
		);
	</script>
</body>
</html>`
