package backend

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"

	"github.com/pkg/errors"

	"github.com/trezcool/markaz/core/auth"
	"github.com/trezcool/markaz/core/profile"
)

// Auth implements auth.Repository and profile.Repository.
type Auth struct {
	c *Client
}

func NewAuth(c *Client) *Auth {
	return &Auth{c: c}
}

// SignIn relays the credentials without a token and returns the raw answer.
func (a *Auth) SignIn(ctx context.Context, cred auth.Credentials) (auth.Reply, error) {
	resp, err := a.c.send(ctx, call{method: http.MethodPost, path: "/api/auth/sign-in", body: cred, public: true})
	if err != nil {
		return auth.Reply{}, err
	}
	return auth.Reply{Status: resp.status, Body: decodeMap(resp.body)}, nil
}

func (a *Auth) EditProfile(ctx context.Context, ep profile.EditProfile) error {
	return a.c.exec(ctx, call{
		method:   http.MethodPost,
		path:     "/api/auth/edit-profile",
		body:     ep,
		fallback: "Profilni yangilashda xatolik yuz berdi",
	})
}

func (a *Auth) EditPassword(ctx context.Context, ep profile.EditPassword) error {
	return a.c.exec(ctx, call{
		method:   http.MethodPost,
		path:     "/api/auth/edit-password",
		body:     ep,
		fallback: "Parolni tahrirlashda xatolik yuz berdi",
	})
}

// EditImage uploads the avatar as the multipart field `image`.
func (a *Auth) EditImage(ctx context.Context, filename string, jpeg []byte) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return "", errors.Wrap(err, "creating image part")
	}
	if _, err := fw.Write(jpeg); err != nil {
		return "", errors.Wrap(err, "writing image part")
	}
	if err := mw.Close(); err != nil {
		return "", errors.Wrap(err, "closing multipart body")
	}

	body, err := a.c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/api/auth/edit-profile-img",
		raw:      &buf,
		ctype:    mw.FormDataContentType(),
		fallback: "Rasm yuklashda xatolik",
	})
	if err != nil {
		return "", err
	}
	return firstString(body, []interface{}{"data", "image"}, []interface{}{"image"}, []interface{}{"imageUrl"}), nil
}
