// Package icsfile stores calendars as iCalendar files on disk, one file per calendar
// id. It lets a pass run against local fixtures or exported calendars without any
// Google credentials.
package icsfile
