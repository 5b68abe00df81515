package http

import (
	"net/http"

	"kepngern/internal/core"
)

// NotificationsResponse is the body of GET /api/notifications.
type NotificationsResponse struct {
	Notifications []core.Notification `json:"notifications"`
	UnreadCount   int                 `json:"unreadCount"`
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	list := s.notifications.List()
	if list == nil {
		list = []core.Notification{}
	}
	writeJSON(w, r, http.StatusOK, NotificationsResponse{
		Notifications: list,
		UnreadCount:   s.notifications.UnreadCount(),
	})
}

func (s *Server) handleClearNotifications(w http.ResponseWriter, r *http.Request) {
	s.notifications.ClearAll(r.Context())
	writeJSON(w, r, http.StatusNoContent, nil)
}

func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	s.notifications.MarkAllAsRead(r.Context())
	writeJSON(w, r, http.StatusNoContent, nil)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	s.notifications.MarkAsRead(r.Context(), pathParam(r, "id"))
	writeJSON(w, r, http.StatusNoContent, nil)
}

func (s *Server) handleDeleteNotification(w http.ResponseWriter, r *http.Request) {
	s.notifications.Delete(r.Context(), pathParam(r, "id"))
	writeJSON(w, r, http.StatusNoContent, nil)
}
