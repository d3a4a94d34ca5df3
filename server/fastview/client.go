// fastview publishes idempotent view-model updates to web clients over a websocket.
package fastview

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 1 * time.Second
	// Maximum message size allowed from peer.
	maxMessageSize = 8192

	// The rate at which updates are sent to the client, so as not to overburden.
	PubResolution  = time.Millisecond * 100
	pingResolution = time.Millisecond * 200
	// The number of pings to tolerate losing before concluding the peer is gone.
	pongWait = pingResolution * 4
)

var upgrader = websocket.Upgrader{}

// Client publishes updates unidirectionally to a web client. Messages from the client
// are read only to service control frames and detect closure.
type Client[T any] struct {
	updates <-chan T
	ws      *websock
	rootCtx context.Context
}

// NewClient upgrades the request to a websocket. Items in @updates should be idempotent,
// such that intervening updates can be discarded when they arrive faster than PubResolution
// and sending only the latest is sufficient to specify the client's state.
func NewClient[T any](
	updates <-chan T,
	w http.ResponseWriter,
	r *http.Request,
) (*Client[T], error) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already replied to the client.
		return nil, errors.Wrap(err, "upgrade")
	}
	ws.SetReadLimit(maxMessageSize)

	return &Client[T]{
		updates: updates,
		ws:      newWebSocket(ws),
		rootCtx: r.Context(),
	}, nil
}

// Sync publishes incoming updates until the client disconnects, the updates channel
// closes and the client leaves, or an unexpected error occurs. It returns nil on a
// clean disconnect.
func (cli *Client[T]) Sync() error {
	defer cli.ws.Close()

	group, groupCtx := errgroup.WithContext(cli.rootCtx)
	go func() {
		// Unblock the pending read once any routine fails.
		<-groupCtx.Done()
		_ = cli.ws.Conn().SetReadDeadline(time.Now())
	}()
	group.Go(func() error {
		return cli.readMessages(groupCtx)
	})
	group.Go(func() error {
		return cli.pingPong(groupCtx)
	})
	group.Go(func() error {
		return cli.publish(groupCtx)
	})

	if err := group.Wait(); err != nil && !isClosure(err) {
		return err
	}
	return nil
}

var ErrPongDeadlineExceeded = errors.New("client disconnect, pong deadline exceeded")

// pingPong runs the client liveness check. readMessages must be running for the pong
// handler to be called.
func (cli *Client[T]) pingPong(ctx context.Context) error {
	pong := make(chan struct{}, 1)
	cli.ws.Conn().SetPongHandler(func(_ string) error {
		select {
		case pong <- struct{}{}:
		default:
		}
		return nil
	})

	pinger := channerics.NewTicker(ctx.Done(), pingResolution)
	lastPong := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-pinger:
			if time.Since(lastPong) > pongWait {
				return ErrPongDeadlineExceeded
			}
			if err := cli.ping(ctx); err != nil {
				return err
			}
		case <-pong:
			lastPong = time.Now()
		}
	}
}

func (cli *Client[T]) ping(ctx context.Context) error {
	return cli.ws.Write(
		ctx,
		func(ws *websocket.Conn) error {
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return errors.Wrap(err, "ping failed")
			}
			return nil
		})
}

// readMessages monitors for messages from the client. Errors returned by websocket
// reads are permanent, hence any error tears the client down.
func (cli *Client[T]) readMessages(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if _, _, err := cli.ws.Conn().NextReader(); err != nil {
			if isClosure(err) || ctx.Err() != nil {
				return err
			}
			return errors.Wrap(err, "read failed")
		}
	}
}

func (cli *Client[T]) publish(ctx context.Context) error {
	var lastSync time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-cli.updates:
			if !ok {
				return nil
			}
			// Drop updates when receiving too quickly.
			if time.Since(lastSync) < PubResolution {
				break
			}

			lastSync = time.Now()
			err := cli.ws.Write(
				ctx,
				func(ws *websocket.Conn) error {
					if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
						return errors.Wrap(err, "failed to set deadline")
					}
					if err := ws.WriteJSON(update); err != nil {
						return errors.Wrap(err, "publish failed")
					}
					return nil
				})
			if err != nil {
				return err
			}
		}
	}
}

func isClosure(err error) bool {
	return err != nil && websocket.IsCloseError(
		errors.Cause(err),
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway)
}
