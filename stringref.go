package edba

import "github.com/caohanyu/edba/backend"

// StringRef is re-exported from backend, where it has to live so
// backend.NameBinder (spec component 4) can use it without edba/backend
// importing edba. See backend.StringRef for the comparator surface.
type StringRef = backend.StringRef
