// Package slug converts arbitrary strings into URL- and filename-safe form.
//
// Its consumer in this module is the enrollment service, which embeds the
// configured site name into the backup document filename. Spaces and special
// characters become hyphens, common Latin diacritics fold to ASCII, and the
// result is always lowercase.
//
//	slug.Make("Hello World!") // "hello-world"
//	slug.Make("Café Déjà Vu") // "cafe-deja-vu"
package slug
