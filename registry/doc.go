/*
Package registry holds the entity configuration of contentstore and the identifier resolver.

The registry is constructed once at startup and is read-only afterwards:

	reg, err := registry.NewBuilder().
	    Collection(registry.Entity{Slug: "posts", Versioned: true}).
	    Global(registry.Entity{Slug: "settings", Versioned: true}).
	    Build()

Identifier resolution:
A Resolver pairs the registry with a NamingFunc, which picks the Naming convention of the
driver storing each entity, and maps a slug to its physical Location. Resolution is a pure
function of its inputs:

	res := registry.NewResolver(reg, registry.Using(registry.DocumentNaming()))
	loc, _, _ := res.Resolve("posts", registry.KindCollection, false)     // "posts"
	loc, _, _ = res.Resolve("settings", registry.KindGlobal, true)        // "_settings_versions"
	loc, _, _ = res.Resolve("settings", registry.KindGlobal, false)       // "globals", discriminator "globalType"

Relational stores use RelationalNaming, which snake_cases slugs ("blogPosts" becomes
"blog_posts") and keeps one table per global.

Unknown slugs fail with an errors.ConfigurationError.
*/
package registry
