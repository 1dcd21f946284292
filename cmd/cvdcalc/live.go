package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"SmartCVD/internal/domain/models"
	drepo "SmartCVD/internal/domain/repository"
	"SmartCVD/internal/service/livestream"

	"github.com/spf13/cobra"
)

var errStreamClosed = errors.New("live stream closed")

// liveSession sends requests one at a time and waits for the matching frame.
// The server answers every message with exactly one frame, in order, so the
// pending request is the one the next frame belongs to.
type liveSession struct {
	stream        drepo.LiveStream
	interval      time.Duration // minimum spacing between sends
	maxThrottled  int           // resends of one request after a throttled frame
	maxReconnects int

	frames <-chan models.LiveFrame
	errs   <-chan error
}

func (s *liveSession) run(ctx context.Context, reqs []models.AssessmentRequest, emit func(models.LiveFrame) error) error {
	s.frames, s.errs = s.stream.Read(ctx)

	var (
		reconnects int
		throttled  int
		lastSend   time.Time
	)
	for i := 0; i < len(reqs); {
		if err := s.pace(ctx, lastSend, throttled); err != nil {
			return err
		}
		lastSend = time.Now()

		f, err := s.roundTrip(ctx, reqs[i])
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if reconnects >= s.maxReconnects {
				return fmt.Errorf("request %d of %d: %w", i+1, len(reqs), err)
			}
			reconnects++
			if err := s.stream.Reconnect(ctx); err != nil {
				return fmt.Errorf("live reconnect: %w", err)
			}
			s.frames, s.errs = s.stream.Read(ctx)
			continue
		}

		if f.Type == models.FrameThrottled && throttled < s.maxThrottled {
			throttled++
			continue
		}
		throttled = 0

		// number frames by request so output stays stable across reconnects
		f.Seq = uint64(i + 1)
		if err := emit(f); err != nil {
			return err
		}
		i++
	}
	return nil
}

// pace waits until interval has passed since the last send, doubling the wait
// for each consecutive throttled answer.
func (s *liveSession) pace(ctx context.Context, last time.Time, throttled int) error {
	if last.IsZero() || s.interval <= 0 {
		return nil
	}
	wait := s.interval << uint(throttled)
	wait -= time.Since(last)
	if wait <= 0 {
		return nil
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *liveSession) roundTrip(ctx context.Context, req models.AssessmentRequest) (models.LiveFrame, error) {
	if err := s.stream.Send(ctx, req); err != nil {
		return models.LiveFrame{}, err
	}
	for {
		select {
		case f, ok := <-s.frames:
			if !ok {
				// errs is closed before frames, so this never blocks
				if s.errs != nil {
					if err, ok := <-s.errs; ok && err != nil {
						return models.LiveFrame{}, err
					}
				}
				return models.LiveFrame{}, errStreamClosed
			}
			return f, nil
		case err, ok := <-s.errs:
			if ok && err != nil {
				return models.LiveFrame{}, err
			}
			s.errs = nil
		case <-ctx.Done():
			return models.LiveFrame{}, ctx.Err()
		}
	}
}

func newLiveCmd(o *options) *cobra.Command {
	var (
		file       string
		server     string
		timeout    time.Duration
		rate       float64
		reconnects int
	)
	cmd := &cobra.Command{
		Use:   "live",
		Short: "Stream assessment requests over the live WebSocket endpoint",
		Long: `Send every request in a JSON file (one object or an array) to the live
assessment endpoint of a running server and print each frame as it arrives.
Requests go one at a time, at most --rate per second. A throttled request is
sent again, and a dropped connection is re-established and the unanswered
request resent.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rate <= 0 {
				return fmt.Errorf("--rate must be positive")
			}
			reqs, err := readRequests(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			stream := livestream.New(liveURL(server), 500*time.Millisecond, 30*time.Second)
			if err := stream.Connect(ctx); err != nil {
				return err
			}
			defer stream.Close()

			s := &liveSession{
				stream:        stream,
				interval:      time.Duration(float64(time.Second) / rate),
				maxThrottled:  3,
				maxReconnects: reconnects,
			}
			return s.run(ctx, reqs, func(f models.LiveFrame) error {
				if o.jsonOut {
					return writeJSON(cmd.OutOrStdout(), f)
				}
				printFrame(cmd.OutOrStdout(), f)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVarP(&file, "file", "f", "", "request JSON file (object or array), - for stdin")
	f.StringVar(&server, "server", "http://localhost:8080", "SmartCVD API base URL")
	f.DurationVar(&timeout, "timeout", time.Minute, "overall timeout")
	f.Float64Var(&rate, "rate", 5, "max requests per second; keep below the server's live.max_rps")
	f.IntVar(&reconnects, "reconnects", 3, "reconnect attempts after a dropped connection")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
