package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nexogroup/nexo-server/internal/domain"
	domainerrors "github.com/nexogroup/nexo-server/internal/errors"
	"github.com/nexogroup/nexo-server/internal/service"
)

// fixture is the seed file layout.
type fixture struct {
	Members  []memberSeed  `yaml:"members"`
	Meetings []meetingSeed `yaml:"meetings"`
	Notices  []noticeSeed  `yaml:"notices"`
}

type memberSeed struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Phone    string `yaml:"phone"`
	Company  string `yaml:"company"`
	Position string `yaml:"position"`
	Segment  string `yaml:"segment"`
	Password string `yaml:"password"`
}

type meetingSeed struct {
	Title       string    `yaml:"title"`
	Description string    `yaml:"description"`
	Date        time.Time `yaml:"date"`
	Type        string    `yaml:"type"`
	Location    string    `yaml:"location"`
}

type noticeSeed struct {
	Title   string `yaml:"title"`
	Content string `yaml:"content"`
	Type    string `yaml:"type"`
	Author  string `yaml:"author"`
}

// seedReport counts what a seed run created.
type seedReport struct {
	Members  int
	Meetings int
	Notices  int
}

func loadFixture(path string) (*fixture, error) {
	//#nosec G304 -- fixture path is an operator-supplied CLI argument
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return parseFixture(raw)
}

func parseFixture(raw []byte) (*fixture, error) {
	var f fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &f, nil
}

// seed runs every fixture member through submit, approve and register so
// seeded rows obey the same invariants as real ones. Members whose email
// already applied are skipped, which makes re-running a fixture safe.
func (a *app) seed(ctx context.Context, f *fixture) (seedReport, error) {
	var report seedReport

	for _, ms := range f.Members {
		created, err := a.seedMember(ctx, ms)
		if err != nil {
			return report, fmt.Errorf("member %s: %w", ms.Email, err)
		}
		if created {
			report.Members++
		}
	}

	for _, mt := range f.Meetings {
		typ := domain.MeetingType(mt.Type)
		if typ == "" {
			typ = domain.MeetingRegular
		}
		if _, err := a.meetings.Create(ctx, service.CreateMeetingRequest{
			Title:       mt.Title,
			Description: mt.Description,
			Date:        mt.Date,
			Type:        typ,
			Location:    mt.Location,
		}); err != nil {
			return report, fmt.Errorf("meeting %q: %w", mt.Title, err)
		}
		report.Meetings++
	}

	for _, n := range f.Notices {
		if _, err := a.notices.Create(ctx, service.CreateNoticeRequest{
			Title:      n.Title,
			Content:    n.Content,
			Type:       domain.NoticeType(n.Type),
			AuthorName: n.Author,
		}); err != nil {
			return report, fmt.Errorf("notice %q: %w", n.Title, err)
		}
		report.Notices++
	}

	return report, nil
}

func (a *app) seedMember(ctx context.Context, ms memberSeed) (bool, error) {
	in, err := a.intentions.Submit(ctx, service.SubmitIntentionRequest{
		Name:    ms.Name,
		Email:   ms.Email,
		Phone:   ms.Phone,
		Company: ms.Company,
	})
	if errors.Is(err, domainerrors.ErrConflict) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	res, err := a.intentions.Approve(ctx, in.ID)
	if err != nil {
		return false, err
	}

	req := service.RegisterRequest{Token: res.Member.InviteToken}
	if ms.Position != "" {
		req.Position = &ms.Position
	}
	if ms.Segment != "" {
		req.Segment = &ms.Segment
	}
	if ms.Password != "" {
		req.Password = &ms.Password
	}
	if _, err := a.registration.Redeem(ctx, req); err != nil {
		return false, err
	}
	return true, nil
}
