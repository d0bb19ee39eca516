package handler

import (
	"github.com/gin-gonic/gin"
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
)

// NewGinHandler は POST /graphql 用の gin ハンドラを返します。
// リクエストごとの Authorization ヘッダーをリゾルバへ引き渡します。
func NewGinHandler(schema *graphql.Schema) gin.HandlerFunc {
	h := &relay.Handler{Schema: schema}
	return func(c *gin.Context) {
		ctx := WithAuthorization(c.Request.Context(), c.GetHeader("Authorization"))
		h.ServeHTTP(c.Writer, c.Request.WithContext(ctx))
	}
}
