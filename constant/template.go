package constant

// Global functions a Lua source may define. Only SearchContentFn is required.
const (
	SearchContentFn  = "SearchContent"
	ContentDetailsFn = "ContentDetails"
)

// SourceTemplate is a text/template used by "sources gen" to scaffold a new Lua source.
const SourceTemplate = `{{ $divider := repeat "-" (plus (max (len .URL) (len .Name) (len .Author) 3) 12) }}{{ $divider }}
-- @name    {{ .Name }}
-- @url     {{ .URL }}
-- @author  {{ .Author }}
-- @license MIT
{{ $divider }}


---@alias result { title: string, url: string, type: string|nil, poster: string|nil, year: number|nil }
---@alias details { description: string|nil, rating: number|nil, duration: number|nil, tags: string|string[]|nil, poster: string|nil, year: number|nil }


----- IMPORTS -----
--- END IMPORTS ---



----- VARIABLES -----
local base = "{{ .URL }}"
--- END VARIABLES ---



----- MAIN -----

--- Searches the site for titles matching the query.
-- Type is one of: movie, series, anime, documentary, live.
-- @param query string Query to search for
-- @return result[] Table of results
function {{ .SearchContentFn }}(query)
	return {}
end


--- Loads extra metadata for a result page. Optional.
-- @param url string URL returned by {{ .SearchContentFn }}
-- @return details Table of details
function {{ .ContentDetailsFn }}(url)
	return {}
end


--- END MAIN ---




----- HELPERS -----
--- END HELPERS ---

-- ex: ts=4 sw=4 et filetype=lua
`
