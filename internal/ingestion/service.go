package ingestion

import (
	"github.com/gin-gonic/gin"
)

// PacketReceiver accepts raw feed packets. *Handler implements it.
type PacketReceiver interface {
	ReceiveUnfiltered(packet []byte) bool
}

// Service exposes packet intake over HTTP.
type Service struct {
	receiver         PacketReceiver
	maxBodySizeBytes int
}

func NewService(receiver PacketReceiver, maxBodySizeKB int) *Service {
	if receiver == nil {
		panic("ingestion: receiver must not be nil")
	}
	if maxBodySizeKB <= 0 {
		maxBodySizeKB = 64
	}
	return &Service{
		receiver:         receiver,
		maxBodySizeBytes: maxBodySizeKB * 1024,
	}
}

// RegisterRoutes registers the ingestion service routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/packets", s.IngestHandler)
}
