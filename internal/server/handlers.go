package server

import (
	"context"

	"stats-tool/internal/models"
)

// handleDescribe returns the capability descriptor as its own document
func (s *PluginServer) handleDescribe() []byte {
	return s.describeResponse
}

// handleCall runs the tool; params that are missing or not an object are
// treated as an empty bag
func (s *PluginServer) handleCall(ctx context.Context, request *models.PluginRequest) ([]byte, bool) {
	text, isError := s.executor.Execute(ctx, request.ParamBag())
	return s.createResultResponse(text, isError), isError
}
