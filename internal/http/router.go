package http

import (
	"net/http"

	"github.com/jaekwang-park/todo-items-api/internal/http/handler"
	"github.com/jaekwang-park/todo-items-api/internal/service"
)

// NewRouter mounts the item resource and the health check. db may be nil.
func NewRouter(itemSvc *service.ItemService, db handler.Pinger) http.Handler {
	mux := http.NewServeMux()

	// Health check - intentionally outside /api/v1 for ALB health check compatibility
	mux.Handle("/health", handler.NewHealthHandler(db))

	items := handler.NewItemHandler(itemSvc)
	mux.Handle(handler.ItemsPath, items)
	mux.Handle(handler.ItemsPath+"/", items)

	return mux
}
