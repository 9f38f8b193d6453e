package router

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/hemolens/backend/pkg/xcontext"
)

// bindRequest fills the request object from the query string (GET) or the
// JSON body (POST), then from the cookie session for fields carrying a
// `session` tag. A session tag of the form `session:"name,delete"` removes
// the value from the session after reading it, so oauth2 state values are
// single use.
func bindRequest(ctx context.Context, method string, obj any) error {
	req := xcontext.HTTPRequest(ctx)

	switch method {
	case http.MethodGet:
		if err := bindQuery(req, obj); err != nil {
			return err
		}
	case http.MethodPost:
		if req.Body != nil && req.ContentLength != 0 {
			if err := json.NewDecoder(req.Body).Decode(obj); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unsupported method %s", method)
	}

	return bindSession(ctx, obj)
}

func bindQuery(req *http.Request, obj any) error {
	value := reflect.ValueOf(obj).Elem()
	if value.Kind() != reflect.Struct {
		return fmt.Errorf("cannot bind query into %T", obj)
	}

	query := req.URL.Query()
	structType := value.Type()
	for i := 0; i < structType.NumField(); i++ {
		name, ok := structType.Field(i).Tag.Lookup("json")
		if !ok {
			continue
		}

		name, _, _ = strings.Cut(name, ",")
		if name == "" || name == "-" {
			continue
		}

		if !query.Has(name) {
			continue
		}

		field := value.Field(i)
		if field.Kind() != reflect.String {
			return fmt.Errorf("cannot bind query parameter %s into %s", name, field.Kind())
		}

		field.SetString(query.Get(name))
	}

	return nil
}

func bindSession(ctx context.Context, obj any) error {
	value := reflect.ValueOf(obj).Elem()
	if value.Kind() != reflect.Struct {
		return nil
	}

	var session *sessions.Session
	needSave := false

	structType := value.Type()
	for i := 0; i < structType.NumField(); i++ {
		tag, ok := structType.Field(i).Tag.Lookup("session")
		if !ok {
			continue
		}

		if session == nil {
			var err error
			session, err = xcontext.SessionStore(ctx).Get(xcontext.HTTPRequest(ctx))
			if err != nil {
				return err
			}
		}

		name, opt, _ := strings.Cut(tag, ",")
		v, ok := session.Values[name]
		if !ok {
			continue
		}

		if s, ok := v.(string); ok && value.Field(i).Kind() == reflect.String {
			value.Field(i).SetString(s)
		}

		if opt == "delete" {
			delete(session.Values, name)
			needSave = true
		}
	}

	if needSave {
		return session.Save(xcontext.HTTPRequest(ctx), xcontext.HTTPWriter(ctx))
	}

	return nil
}
