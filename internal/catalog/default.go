package catalog

// Default returns the built-in docker catalog.
func Default() *Catalog {
	entries := make([]Entry, len(defaultEntries))
	copy(entries, defaultEntries)
	c, err := New("docker", entries)
	if err != nil {
		panic(err)
	}
	return c
}

var defaultEntries = []Entry{
	// Basics
	{Label: "Docker Version", Group: "basics", Template: "docker --version"},
	{Label: "Docker Info", Group: "basics", Template: "docker info"},
	{Label: "List Images", Group: "basics", Template: "docker images"},
	{Label: "List Containers (all)", Group: "basics", Template: "docker ps -a"},
	{Label: "Run hello-world", Group: "basics", Template: "docker run --rm hello-world"},

	// Images and containers
	{Label: "Pull Image (name)", Group: "containers", Template: "docker pull {arg}", RequiresArgument: true},
	{Label: "Remove Image (name/id)", Group: "containers", Template: "docker rmi {arg}", RequiresArgument: true},
	{Label: "Create Container (name) from alpine", Group: "containers", Template: "docker create --name {arg} alpine", RequiresArgument: true},
	{Label: "Start Container", Group: "containers", Template: "docker start {arg}", RequiresArgument: true},
	{Label: "Stop Container", Group: "containers", Template: "docker stop {arg}", RequiresArgument: true},
	{Label: "Remove Container", Group: "containers", Template: "docker rm {arg}", RequiresArgument: true},
	{Label: "Container Logs", Group: "containers", Template: "docker logs {arg}", RequiresArgument: true},
	{Label: "Exec Shell (/bin/sh)", Group: "containers", Template: "docker exec -it {arg} /bin/sh", RequiresArgument: true},
	{Label: "Live Stats", Group: "containers", Template: "docker stats --no-stream"},

	// Cleanup
	{Label: "System Prune (all)", Group: "cleanup", Template: "docker system prune -f"},
	{Label: "Prune Dangling Images", Group: "cleanup", Template: "docker image prune -f"},
	{Label: "Prune Volumes", Group: "cleanup", Template: "docker volume prune -f"},

	// Networks and volumes
	{Label: "List Networks", Group: "networks and volumes", Template: "docker network ls"},
	{Label: "Create Network", Group: "networks and volumes", Template: "docker network create {arg}", RequiresArgument: true},
	{Label: "Remove Network", Group: "networks and volumes", Template: "docker network rm {arg}", RequiresArgument: true},
	{Label: "List Volumes", Group: "networks and volumes", Template: "docker volume ls"},
	{Label: "Create Volume", Group: "networks and volumes", Template: "docker volume create {arg}", RequiresArgument: true},
	{Label: "Remove Volume", Group: "networks and volumes", Template: "docker volume rm {arg}", RequiresArgument: true},

	// Tag and push
	{Label: "Tag Image", Group: "tag and push", Template: "docker tag {arg}", RequiresArgument: true},
	{Label: "Push Image", Group: "tag and push", Template: "docker push {arg}", RequiresArgument: true},

	// Inspect and copy
	{Label: "Inspect Container", Group: "inspect and copy", Template: "docker inspect {arg}", RequiresArgument: true},
	{Label: "Inspect Image", Group: "inspect and copy", Template: "docker image inspect {arg}", RequiresArgument: true},
	{Label: "Copy out (ctr:path dest)", Group: "inspect and copy", Template: "docker cp {arg}", RequiresArgument: true},
	{Label: "Disk Usage", Group: "inspect and copy", Template: "docker system df"},
	{Label: "Image History", Group: "inspect and copy", Template: "docker history {arg}", RequiresArgument: true},

	// Registry and context
	{Label: "Login to Registry", Group: "registry and context", Template: "docker login"},
	{Label: "Logout from Registry", Group: "registry and context", Template: "docker logout"},
	{Label: "List Contexts", Group: "registry and context", Template: "docker context ls"},
	{Label: "Switch Context", Group: "registry and context", Template: "docker context use {arg}", RequiresArgument: true},

	// Compose
	{Label: "Compose Version", Group: "compose", Template: "docker compose version"},
	{Label: "Compose Up (detached)", Group: "compose", Template: "docker compose up -d"},
	{Label: "Compose Down", Group: "compose", Template: "docker compose down"},
	{Label: "Compose Logs", Group: "compose", Template: "docker compose logs --tail 50"},

	// Builder, save and load
	{Label: "List Builder Cache", Group: "builder", Template: "docker builder ls"},
	{Label: "Prune Builder Cache", Group: "builder", Template: "docker builder prune -f"},
	{Label: "Builder Build (Dockerfile)", Group: "builder", Template: "docker build -t {arg} .", RequiresArgument: true},
	{Label: "Save Image → tar", Group: "builder", Template: "docker save {arg}", RequiresArgument: true},
	{Label: "Load Image from tar", Group: "builder", Template: "docker load -i {arg}", RequiresArgument: true},

	// Advanced
	{Label: "Top (processes in ctr)", Group: "advanced", Template: "docker top {arg}", RequiresArgument: true},
	{Label: "Checkpoint create", Group: "advanced", Template: "docker checkpoint create {arg}", RequiresArgument: true},
	{Label: "Checkpoint list", Group: "advanced", Template: "docker checkpoint ls {arg}", RequiresArgument: true},
	{Label: "Checkpoint rm", Group: "advanced", Template: "docker checkpoint rm {arg}", RequiresArgument: true},
	{Label: "Image Digests", Group: "advanced", Template: "docker image ls --digests"},
	{Label: "Events (10s)", Group: "advanced", Template: "timeout 10 docker events"},
	{Label: "Rename Container", Group: "advanced", Template: "docker rename {arg}", RequiresArgument: true},
	{Label: "Commit Container → Image", Group: "advanced", Template: "docker commit {arg}", RequiresArgument: true},
	{Label: "Update Container Resources", Group: "advanced", Template: "docker update {arg}", RequiresArgument: true},
}
