package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	sdkerrors "github.com/readmill/readmill-api/client/internal/errors"
	"github.com/readmill/readmill-api/client/internal/types"
)

// PingRead records reading progress on a read. The ping is checked locally
// first: an out-of-range progress never reaches the network, because the
// server's refusal would be indistinguishable from other failures. Any 2xx
// is success; when the server only acknowledges, the returned ping is built
// from the request and has a zero ID.
func PingRead(ctx context.Context, ep Endpoint, readID types.ReadID, req types.PingRequest) (*types.Ping, error) {
	const op = "ping read"
	if err := types.ValidatePing(req); err != nil {
		return nil, sdkerrors.NewValidationError(op, err.Error())
	}
	var ping types.Ping
	err := ep.do(ctx, call{
		op:     op,
		method: http.MethodPost,
		path:   fmt.Sprintf("/reads/%s/pings", readID),
		body:   req.Payload(),
		ack:    true,
	}, &ping)
	if err != nil {
		return nil, err
	}
	if ping.ID == 0 && ping.ReadID == 0 {
		acknowledged(&ping, readID, req)
	}
	return &ping, nil
}

// acknowledged fills p from the request when the server stored the ping but
// answered with no ping record (204, an empty body or a bare status object).
// p.ID stays zero.
func acknowledged(p *types.Ping, readID types.ReadID, req types.PingRequest) {
	p.ReadID = readID
	p.Progress = req.Progress
	p.Identifier = req.Identifier
	p.Seconds = int64(req.Duration / time.Second)
	p.OccurredAt = req.OccurredAt.Truncate(time.Second)
}
