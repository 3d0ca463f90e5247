package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/yungbote/pylearn-backend/internal/domain/session"
	"github.com/yungbote/pylearn-backend/internal/learning/videogen"
	"github.com/yungbote/pylearn-backend/internal/platform/apierr"
	"github.com/yungbote/pylearn-backend/internal/platform/artifacts"
	"github.com/yungbote/pylearn-backend/internal/platform/logger"
)

const (
	StepScript        = "generate_script"
	StepAnimationCode = "generate_animation_code"
	StepRender        = "render_animation"
	StepAudio         = "generate_audio"
	StepMerge         = "merge_video_audio"

	defaultPipelineTimeout = 15 * time.Minute
)

type GenerateResult struct {
	Success    bool          `json:"success"`
	FailedStep string        `json:"failed_step,omitempty"`
	State      session.State `json:"state"`
}

type Download struct {
	Filename    string
	ContentType string
	Body        io.ReadCloser
}

type VideoService interface {
	SetTopic(ctx context.Context, sid uuid.UUID, topic string) (session.State, error)
	Generate(ctx context.Context, sid uuid.UUID) (*GenerateResult, error)
	Download(ctx context.Context, sid uuid.UUID) (*Download, error)
	QuizFromVideo(ctx context.Context, sid uuid.UUID) (session.State, error)
}

type videoService struct {
	log       *logger.Logger
	sessions  SessionService
	generator videogen.Generator
	store     artifacts.Store
	activity  ActivityService
	quiz      QuizService
	timeout   time.Duration
	inflight  singleflight.Group
}

func NewVideoService(
	log *logger.Logger,
	sessions SessionService,
	generator videogen.Generator,
	store artifacts.Store,
	activity ActivityService,
	quiz QuizService,
	timeout time.Duration,
) VideoService {
	if timeout <= 0 {
		timeout = defaultPipelineTimeout
	}
	return &videoService{
		log:       log.With("service", "VideoService"),
		sessions:  sessions,
		generator: generator,
		store:     store,
		activity:  activity,
		quiz:      quiz,
		timeout:   timeout,
	}
}

func (s *videoService) SetTopic(ctx context.Context, sid uuid.UUID, topic string) (session.State, error) {
	return s.sessions.Update(ctx, sid, func(st *session.State) error {
		if err := requireAuth(st); err != nil {
			return err
		}
		st.VideoTopic = strings.TrimSpace(topic)
		return nil
	})
}

// Generate runs the pipeline for the stored video topic. Concurrent calls for one
// session share a single run, which survives the caller's cancellation up to the
// pipeline timeout.
func (s *videoService) Generate(ctx context.Context, sid uuid.UUID) (*GenerateResult, error) {
	v, err, _ := s.inflight.Do(sid.String(), func() (interface{}, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return s.run(runCtx, sid)
	})
	if err != nil {
		return nil, err
	}
	return v.(*GenerateResult), nil
}

type pipelineStep struct {
	name  string
	run   func(ctx context.Context, st session.State) (string, error)
	apply func(st *session.State, out string)
}

func (s *videoService) steps() []pipelineStep {
	return []pipelineStep{
		{
			name: StepScript,
			run: func(ctx context.Context, st session.State) (string, error) {
				return s.generator.GenerateScript(ctx, st.VideoTopic)
			},
			apply: func(st *session.State, out string) { st.Script = out },
		},
		{
			name: StepAnimationCode,
			run: func(ctx context.Context, st session.State) (string, error) {
				return s.generator.GenerateAnimationCode(ctx, st.VideoTopic, st.Script)
			},
			apply: func(st *session.State, out string) { st.AnimationCode = out },
		},
		{
			name: StepRender,
			run: func(ctx context.Context, st session.State) (string, error) {
				return s.generator.RenderAnimation(ctx, st.AnimationCode, st.VideoTopic)
			},
			apply: func(st *session.State, out string) { st.VideoPath = out },
		},
		{
			name: StepAudio,
			run: func(ctx context.Context, st session.State) (string, error) {
				return s.generator.GenerateAudio(ctx, st.Script, st.VideoTopic)
			},
			apply: func(st *session.State, out string) { st.AudioPath = out },
		},
		{
			name: StepMerge,
			run: func(ctx context.Context, st session.State) (string, error) {
				return s.generator.MergeVideoAudio(ctx, st.VideoPath, st.AudioPath, st.VideoTopic)
			},
			apply: func(st *session.State, out string) { st.FinalVideoPath = out },
		},
	}
}

func (s *videoService) run(ctx context.Context, sid uuid.UUID) (*GenerateResult, error) {
	var (
		topic  string
		userID uuid.UUID
	)
	st, err := s.sessions.Update(ctx, sid, func(st *session.State) error {
		if err := requireAuth(st); err != nil {
			return err
		}
		topic = strings.TrimSpace(st.VideoTopic)
		if topic == "" {
			return apierr.BadRequest("topic_required", "Please enter a topic")
		}
		userID = st.UserID()
		st.ResetPipeline()
		return nil
	})
	if err != nil {
		return nil, err
	}

	started := time.Now()
	for _, step := range s.steps() {
		out, err := step.run(ctx, st)
		if err == nil && strings.TrimSpace(out) == "" {
			err = errors.New("empty result")
		}
		if err != nil {
			s.log.Warn("video pipeline step failed", "step", step.name, "topic", topic, "error", err)
			return &GenerateResult{Success: false, FailedStep: step.name, State: st}, nil
		}
		stale := false
		st, err = s.sessions.Update(ctx, sid, func(cur *session.State) error {
			if !cur.AuthStatus || cur.UserID() != userID || strings.TrimSpace(cur.VideoTopic) != topic {
				cur.ResetPipeline()
				stale = true
				return nil
			}
			step.apply(cur, out)
			return nil
		})
		if err != nil {
			return nil, err
		}
		if stale {
			s.log.Warn("video pipeline abandoned", "step", step.name, "topic", topic)
			return nil, apierr.Conflict("pipeline_stale", "Session changed while the video was generating")
		}
	}

	if err := s.activity.LogVideoWatched(ctx, userID, topic, st.FinalVideoPath); err != nil {
		s.log.Warn("log video watched failed", "user_id", userID, "error", err)
	}
	s.log.Info("video generated", "topic", topic, "user_id", userID, "elapsed", time.Since(started).String())
	return &GenerateResult{Success: true, State: st}, nil
}

func (s *videoService) Download(ctx context.Context, sid uuid.UUID) (*Download, error) {
	st, err := s.sessions.Load(ctx, sid)
	if err != nil {
		return nil, err
	}
	if err := requireAuth(&st); err != nil {
		return nil, err
	}
	if st.FinalVideoPath == "" {
		return nil, apierr.NotFound("video_not_found", "No video has been generated yet")
	}
	body, err := s.store.Open(ctx, st.FinalVideoPath)
	if errors.Is(err, artifacts.ErrNotFound) {
		return nil, apierr.NotFound("video_not_found", "Video file is no longer available")
	}
	if err != nil {
		return nil, fmt.Errorf("open video artifact: %w", err)
	}
	return &Download{
		Filename:    DownloadFilename(st.VideoTopic),
		ContentType: "video/mp4",
		Body:        body,
	}, nil
}

// QuizFromVideo carries the video topic into the quiz page and starts an assessment.
func (s *videoService) QuizFromVideo(ctx context.Context, sid uuid.UUID) (session.State, error) {
	_, err := s.sessions.Update(ctx, sid, func(st *session.State) error {
		if err := requireAuth(st); err != nil {
			return err
		}
		if st.FinalVideoPath == "" {
			return apierr.Conflict("video_required", "Generate a video first")
		}
		st.Topic = st.VideoTopic
		st.Page = session.PageQuizGenerator
		return nil
	})
	if err != nil {
		return session.Defaults(), err
	}
	return s.quiz.Start(ctx, sid)
}
