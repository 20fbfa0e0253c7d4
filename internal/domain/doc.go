// Package domain models the joined music-event table and the aggregation and
// lookup operations every report is built from.
//
// # Data Source
//
// The source is one pre-joined CSV produced upstream from three feeds:
// Ticketmaster music events, U.S. Census population and median household
// income, and the Wikipedia IATA airport lists. One row is one event
// occurrence in one city, carrying that city's and that state's census
// figures and, when the city has one, an airport code:
//
//	Event Number, City, State, IATA,
//	Population_state, Median Household Income_state,
//	Population_city, Median Household Income_city
//
// # Conventions
//
// Duplication:
//
//	An event recurs across rows (one per ticket tier or session), and a city
//	with several airports repeats each event once per airport. Counting raw
//	rows overcounts. Events are deduplicated on (event, state) or
//	(event, city, state) and airports on (IATA, state) or (IATA, city, state)
//	before counting. See [CountByKey].
//
// Blank keys:
//
//	Rows with a blank value in any key column of a count are excluded from
//	that count. A city listed without an airport therefore contributes zero
//	airports instead of one blank airport.
//
// State names:
//
//	Feeds disagree on "NV" vs "Nevada". Both fold to the USPS code, case
//	insensitively. Unrecognized names are title-cased so spellings still
//	group together. See [NormalizeState].
//
// Census figures:
//
//	Population and income are per geography and repeat on every row of that
//	geography. They are taken from the first row that carries both values and
//	are never summed. Income arrives formatted as currency ("$61,000") and is
//	parsed into a decimal by [NormalizeAmount]; a value that does not parse
//	fails the load rather than becoming zero.
package domain
