package types

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
)

// Server records are decoded into typed fields; attributes the structs do
// not declare are kept in Extra so nothing the server sent is lost.

var (
	bookFields = jsonFieldNames(reflect.TypeOf(Book{}))
	readFields = jsonFieldNames(reflect.TypeOf(Read{}))
	pingFields = jsonFieldNames(reflect.TypeOf(Ping{}))
	userFields = jsonFieldNames(reflect.TypeOf(User{}))
)

func jsonFieldNames(t reflect.Type) []string {
	names := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		names = append(names, name)
	}
	return names
}

// extraFields returns the members of the JSON object data whose keys match
// none of known. encoding/json matches keys case-insensitively, so the
// comparison does too. A null or non-object value has no extras.
func extraFields(data []byte, known []string) (map[string]json.RawMessage, error) {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, nil
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	var extra map[string]json.RawMessage
	for k, v := range all {
		if isKnown(k, known) {
			continue
		}
		if extra == nil {
			extra = make(map[string]json.RawMessage)
		}
		extra[k] = v
	}
	return extra, nil
}

func isKnown(key string, known []string) bool {
	for _, k := range known {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}

// withExtra adds extra to the encoded object b. Declared fields win over an
// extra of the same name.
func withExtra(b []byte, extra map[string]json.RawMessage) ([]byte, error) {
	if len(extra) == 0 {
		return b, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, ok := obj[k]; !ok {
			obj[k] = v
		}
	}
	return json.Marshal(obj)
}

func (b *Book) UnmarshalJSON(data []byte) error {
	type plain Book
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := extraFields(data, bookFields)
	if err != nil {
		return err
	}
	p.Extra = extra
	*b = Book(p)
	return nil
}

func (b Book) MarshalJSON() ([]byte, error) {
	type plain Book
	out, err := json.Marshal(plain(b))
	if err != nil {
		return nil, err
	}
	return withExtra(out, b.Extra)
}

func (r *Read) UnmarshalJSON(data []byte) error {
	type plain Read
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := extraFields(data, readFields)
	if err != nil {
		return err
	}
	p.Extra = extra
	*r = Read(p)
	return nil
}

func (r Read) MarshalJSON() ([]byte, error) {
	type plain Read
	out, err := json.Marshal(plain(r))
	if err != nil {
		return nil, err
	}
	return withExtra(out, r.Extra)
}

func (p *Ping) UnmarshalJSON(data []byte) error {
	type plain Ping
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	extra, err := extraFields(data, pingFields)
	if err != nil {
		return err
	}
	v.Extra = extra
	*p = Ping(v)
	return nil
}

func (p Ping) MarshalJSON() ([]byte, error) {
	type plain Ping
	out, err := json.Marshal(plain(p))
	if err != nil {
		return nil, err
	}
	return withExtra(out, p.Extra)
}

func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := extraFields(data, userFields)
	if err != nil {
		return err
	}
	p.Extra = extra
	*u = User(p)
	return nil
}

func (u User) MarshalJSON() ([]byte, error) {
	type plain User
	out, err := json.Marshal(plain(u))
	if err != nil {
		return nil, err
	}
	return withExtra(out, u.Extra)
}
