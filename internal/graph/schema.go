// Package graph holds the GraphQL schema and its resolvers. Every fault a
// resolver returns goes through apperr.Normalize, so the wire error shape
// is uniform regardless of where the fault originated.
package graph

// Schema is the schema-first SDL served at /graphql.
const Schema = `
	schema {
		query: Query
		mutation: Mutation
	}

	scalar Time

	type Query {
		me: User!
		userPosts(userID: ID!): [Post!]!
		posts(first: Int, offset: Int, search: String): [Post!]!
	}

	type Mutation {
		register(input: RegisterInput!): User!
		login(input: LoginInput!): String!
		createPost(content: String!): Post!
		updatePost(id: ID!, content: String!): Post!
		deletePost(id: ID!): Boolean!
	}

	input RegisterInput {
		username: String!
		email: String!
		password: String!
	}

	input LoginInput {
		email: String!
		password: String!
	}

	type User {
		id: ID!
		username: String!
		email: String!
		role: String!
		createdAt: Time!
		posts: [Post!]!
	}

	type Post {
		id: ID!
		content: String!
		createdAt: Time!
		updatedAt: Time
		author: User!
	}
`
