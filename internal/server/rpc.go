package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"

	"fpl-live-draft/internal/constants"
	"fpl-live-draft/internal/domain"
	"fpl-live-draft/internal/poller"
)

const DraftServiceName = "fpl.draft.v1.DraftService"

const (
	GetLeagueProcedure   = "/" + DraftServiceName + "/GetLeague"
	StartLeagueProcedure = "/" + DraftServiceName + "/StartLeague"
	StopLeagueProcedure  = "/" + DraftServiceName + "/StopLeague"
	WatchLeagueProcedure = "/" + DraftServiceName + "/WatchLeague"
)

var errNoLeague = errors.New("no league is being tracked")

type StartLeagueRequest struct {
	LeagueID string `json:"league_id"`
}

// JSONCodec lets the draft service carry plain Go structs. Protobuf messages
// such as emptypb.Empty go through protojson.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(v any) ([]byte, error) {
	if m, ok := v.(proto.Message); ok {
		return protojson.Marshal(m)
	}
	return json.Marshal(v)
}

func (JSONCodec) Unmarshal(data []byte, v any) error {
	if m, ok := v.(proto.Message); ok {
		return protojson.Unmarshal(data, m)
	}
	return json.Unmarshal(data, v)
}

// rpcHandlers returns the connect handlers keyed by procedure path.
func (s *DraftServer) rpcHandlers() map[string]http.Handler {
	opts := []connect.HandlerOption{connect.WithCodec(JSONCodec{})}
	return map[string]http.Handler{
		GetLeagueProcedure:   connect.NewUnaryHandler(GetLeagueProcedure, s.GetLeague, opts...),
		StartLeagueProcedure: connect.NewUnaryHandler(StartLeagueProcedure, s.StartLeague, opts...),
		StopLeagueProcedure:  connect.NewUnaryHandler(StopLeagueProcedure, s.StopLeague, opts...),
		WatchLeagueProcedure: connect.NewServerStreamHandler(WatchLeagueProcedure, s.WatchLeague, opts...),
	}
}

func (s *DraftServer) GetLeague(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[domain.View], error) {
	view, ok := s.views.Latest()
	if !ok {
		return nil, connect.NewError(connect.CodeNotFound, errNoLeague)
	}
	return connect.NewResponse(&view), nil
}

func (s *DraftServer) StartLeague(ctx context.Context, req *connect.Request[StartLeagueRequest]) (*connect.Response[domain.View], error) {
	view, err := s.tracker.Start(req.Msg.LeagueID)
	switch {
	case errors.Is(err, poller.ErrInvalidLeagueID):
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New(constants.MsgInvalidLeagueID))
	case err != nil:
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to start polling")
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(&view), nil
}

func (s *DraftServer) StopLeague(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[emptypb.Empty], error) {
	s.tracker.Stop()
	return connect.NewResponse(&emptypb.Empty{}), nil
}

// WatchLeague streams every published view until the client goes away. The
// current view, if any, is sent first.
func (s *DraftServer) WatchLeague(ctx context.Context, req *connect.Request[emptypb.Empty], stream *connect.ServerStream[domain.View]) error {
	views, unsubscribe := s.views.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return nil
		case view, ok := <-views:
			if !ok {
				return nil
			}
			if err := stream.Send(&view); err != nil {
				zerolog.Ctx(ctx).Debug().Err(err).Msg("watch stream send failed")
				return err
			}
		}
	}
}
