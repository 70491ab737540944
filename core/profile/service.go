package profile

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/query"
	"github.com/trezcool/markaz/core/session"
)

var (
	errImageTooLarge = errors.New("Rasm hajmi 5 MB dan oshmasligi kerak")
	errImageInvalid  = errors.New("Fayl rasm emas yoki buzilgan")
)

const (
	MutationEdit     = CacheKey + ".edit"
	MutationPassword = CacheKey + ".password"
	MutationImage    = CacheKey + ".image"
)

type (
	Repository interface {
		EditProfile(ctx context.Context, ep EditProfile) error
		EditPassword(ctx context.Context, ep EditPassword) error
		// EditImage uploads a JPEG avatar and returns its URL (empty when the backend sends none).
		EditImage(ctx context.Context, filename string, jpeg []byte) (string, error)
	}

	Service struct {
		r        Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{r: repo, validate: validate}
}

// Get returns the signed-in profile.
func (s *Service) Get(ctx context.Context, sess session.Session, o session.Overlay) (Profile, error) {
	if sess.Token == "" {
		return Profile{}, core.ErrUnauthenticated
	}
	return query.Query(ctx, query.FromContext(ctx), CacheKey, func(ctx context.Context) (Profile, error) {
		return FromSession(sess, o), nil
	})
}

// Edit sends the new names and returns the overlay to keep in the session.
func (s *Service) Edit(ctx context.Context, ep EditProfile, current session.Overlay) (session.Overlay, error) {
	ep.Clean()
	if err := ep.Validate(s.validate); err != nil {
		return current, err
	}

	m := query.Mutation{Name: MutationEdit, Affects: []string{CacheKey}}
	return query.Exec(ctx, query.FromContext(ctx), m, func(ctx context.Context) (session.Overlay, error) {
		if err := s.r.EditProfile(ctx, ep); err != nil {
			return current, err
		}
		return ep.Overlay(current.Image), nil
	})
}

func (s *Service) EditPassword(ctx context.Context, ep EditPassword) error {
	if err := ep.Validate(s.validate); err != nil {
		return err
	}

	m := query.Mutation{Name: MutationPassword}
	_, err := query.Exec(ctx, query.FromContext(ctx), m, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.r.EditPassword(ctx, ep)
	})
	return err
}

// EditImage shrinks the upload to fit 512x512, re-encodes it as JPEG and sends it.
// It returns the overlay with the new image URL.
func (s *Service) EditImage(ctx context.Context, filename string, data []byte, current session.Overlay) (session.Overlay, error) {
	jpeg, err := Thumbnail(data)
	if err != nil {
		return current, err
	}

	filename = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		filename = "avatar"
	}
	filename += ".jpg"

	m := query.Mutation{Name: MutationImage, Affects: []string{CacheKey}}
	return query.Exec(ctx, query.FromContext(ctx), m, func(ctx context.Context) (session.Overlay, error) {
		url, err := s.r.EditImage(ctx, filename, jpeg)
		if err != nil {
			return current, err
		}
		o := current
		if url != "" {
			o.Image = url
		}
		return o, nil
	})
}

// Thumbnail checks an avatar upload and returns it as a JPEG fitting the avatar box.
func Thumbnail(data []byte) ([]byte, error) {
	if len(data) > MaxImageSize {
		return nil, core.NewValidationError(errImageTooLarge, core.FieldError{Field: "image", Error: errImageTooLarge.Error()})
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, core.NewValidationError(errImageInvalid, core.FieldError{Field: "image", Error: errImageInvalid.Error()})
	}
	img = imaging.Fit(img, imageSide, imageSide, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, errors.Wrap(err, "encoding avatar")
	}
	return buf.Bytes(), nil
}
