package com

import "github.com/rs/xid"

// Uid is a sortable unique id for sessions.
type Uid struct {
	xid.ID
}

var NilUid = Uid{xid.NilID()}

func NewUid() Uid { return Uid{xid.New()} }

func (u Uid) IsEmpty() bool { return u.IsNil() }

// Short is a compact form for logs.
func (u Uid) Short() string { s := u.String(); return s[:3] + "." + s[len(s)-3:] }
