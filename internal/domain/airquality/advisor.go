package airquality

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/yanqian/airquality-advisor/internal/infra/llm/chatgpt"
	"github.com/yanqian/airquality-advisor/pkg/metrics"
)

// completion is the outcome of one LLM round trip. ok is false when the caller must use its fallback text.
type completion struct {
	content string
	usage   *metrics.TokenUsage
	ok      bool
}

type advisor struct {
	cfg     Config
	client  ChatClient
	counter TokenCounter
	logger  *slog.Logger
}

func (a *advisor) complete(ctx context.Context, prompt string) completion {
	resp, err := a.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model:       a.cfg.Model,
		Messages:    []chatgpt.Message{{Role: "user", Content: prompt}},
		Temperature: a.cfg.Temperature,
	})
	if err != nil {
		metrics.ObserveUpstream("llm", err)
		a.logger.Warn("chat completion failed", "error", err)
		return completion{}
	}
	if len(resp.Choices) == 0 {
		metrics.ObserveUpstream("llm", errors.New("no choices"))
		a.logger.Warn("chat completion returned no choices")
		return completion{}
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		metrics.ObserveUpstream("llm", errors.New("empty content"))
		a.logger.Warn("chat completion returned empty content")
		return completion{}
	}
	metrics.ObserveUpstream("llm", nil)
	return completion{content: content, usage: a.usage(resp.Usage, prompt, content), ok: true}
}

// composeAdvice asks for precautions, activities and lifestyle tips for the condition and reading.
func (a *advisor) composeAdvice(ctx context.Context, condition HealthCondition, reading PollutantReading) completion {
	out := a.complete(ctx, buildAdvicePrompt(condition, reading))
	if !out.ok {
		out.content = AdviceFallback
	}
	return out
}

func (a *advisor) respond(ctx context.Context, question string) completion {
	out := a.complete(ctx, buildChatPrompt(question))
	if !out.ok {
		out.content = ChatFallback
	}
	return out
}

func (a *advisor) stream(ctx context.Context, question string) <-chan ChatChunk {
	out := make(chan ChatChunk)
	stream, err := a.client.CreateChatCompletionStream(ctx, chatgpt.ChatCompletionRequest{
		Model:       a.cfg.Model,
		Messages:    []chatgpt.Message{{Role: "user", Content: buildChatPrompt(question)}},
		Temperature: a.cfg.Temperature,
	})
	if err != nil {
		metrics.ObserveUpstream("llm", err)
		a.logger.Warn("chat stream request failed", "error", err)
		go func() {
			defer close(out)
			select {
			case out <- ChatChunk{Delta: ChatFallback, Completed: true}:
			case <-ctx.Done():
			}
		}()
		return out
	}
	metrics.ObserveUpstream("llm", nil)

	go func() {
		defer close(out)
		defer stream.Close()

		received := false
		for {
			chunk, recvErr := stream.Recv()
			if recvErr != nil {
				if !errors.Is(recvErr, io.EOF) {
					a.logger.Error("chat stream recv failed", "error", recvErr)
				}
				break
			}
			for _, choice := range chunk.Choices {
				if choice.Delta.Content == "" {
					continue
				}
				received = true
				select {
				case out <- ChatChunk{Delta: choice.Delta.Content, Available: true}:
				case <-ctx.Done():
					return
				}
			}
		}

		final := ChatChunk{Completed: true, Available: received}
		if !received {
			final.Delta = ChatFallback
		}
		select {
		case out <- final:
		case <-ctx.Done():
		}
	}()
	return out
}

func (a *advisor) usage(reported *chatgpt.Usage, prompt, content string) *metrics.TokenUsage {
	if reported != nil && reported.TotalTokens > 0 {
		return metrics.NewTokenUsage(reported.PromptTokens, reported.CompletionTokens, reported.TotalTokens, metrics.UsageReported)
	}
	if a.counter == nil {
		return nil
	}
	return metrics.NewTokenUsage(a.counter.Count(a.cfg.Model, prompt), a.counter.Count(a.cfg.Model, content), 0, metrics.UsageEstimated)
}
