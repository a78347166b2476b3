package conversation

import (
	"testing"

	"github.com/Abraxas-365/craftable/storex"
	"github.com/stretchr/testify/assert"
)

func TestConversationListRequest_GetOffset(t *testing.T) {
	req := ConversationListRequest{PaginationOptions: storex.PaginationOptions{Page: 2, PageSize: 25}}
	assert.Equal(t, 25, req.GetOffset())

	req = ConversationListRequest{PaginationOptions: storex.PaginationOptions{Page: 1, PageSize: 25}}
	assert.Equal(t, 0, req.GetOffset())

	// page cero o sin inicializar nunca produce un offset negativo
	req = ConversationListRequest{PaginationOptions: storex.PaginationOptions{PageSize: 25}}
	assert.Equal(t, 0, req.GetOffset())
}
