// Package schema provides the field type codecs that convert values between
// their stored form and their textual query-string form.
//
// A Schema maps field names to codecs. Fields missing from a schema are never
// converted: they do not appear in typed state and are left untouched in the
// query string on write.
//
// The codec set is closed: Identity, Boolean, String and Number, plus Custom
// for caller-supplied conversions. Conversions never fail. Malformed input
// degrades to a type default (false, "" or NaN) which the converters treat as
// empty.
//
// Usage:
//
//	sch := schema.Schema{
//	    "q":     schema.String,
//	    "page":  schema.Number,
//	    "draft": schema.Boolean,
//	}
//	page := sch["page"].ParseForStore("3")     // float64(3)
//	raw := sch["draft"].ParseForLocation(true) // "true"
package schema
