package httpclient

import (
	"fmt"
	"net/url"
)

// EncodeQuery flattens caller supplied query parameters into url.Values.
// Slices become repeated keys and nil values are dropped.
func EncodeQuery(query map[string]any) url.Values {
	if len(query) == 0 {
		return nil
	}
	values := make(url.Values, len(query))
	for key, raw := range query {
		switch v := raw.(type) {
		case nil:
			continue
		case string:
			values.Add(key, v)
		case []string:
			for _, item := range v {
				values.Add(key, item)
			}
		case []any:
			for _, item := range v {
				if item != nil {
					values.Add(key, fmt.Sprint(item))
				}
			}
		default:
			values.Add(key, fmt.Sprint(v))
		}
	}
	if len(values) == 0 {
		return nil
	}
	return values
}

// AppendQuery appends the encoded query to rawURL. The URL is returned
// unchanged when there is nothing to append.
func AppendQuery(rawURL string, query map[string]any) string {
	values := EncodeQuery(query)
	if len(values) == 0 {
		return rawURL
	}
	return rawURL + "?" + values.Encode()
}
